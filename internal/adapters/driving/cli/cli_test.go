package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/core/services"
)

const referenceJSON = `{
  "ConnectionTypes": [{"ID": 25, "Title": "Type 2 (Socket Only)"}],
  "Countries": [{"ID": 87, "ISOCode": "DE", "Title": "Germany"}],
  "Operators": [{"ID": 7, "Title": "Acme"}]
}`

const recordJSON = `{
  "ID": 100,
  "OperatorID": 7,
  "AddressInfo": {"AddressLine1": "Alexanderplatz 1", "Town": "Berlin", "CountryID": 87, "Latitude": 52.52, "Longitude": 13.41},
  "Connections": [{"ConnectionTypeID": 25, "PowerKW": 22}]
}`

// testEnv holds the in-memory adapters behind the services handed to the commands.
type testEnv struct {
	config   *memory.ConfigStore
	state    *memory.MirrorState
	tool     *memory.MirrorTool
	writer   *memory.DatasetWriter
	stations *memory.StationStore
	wiredDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	layout := domain.MirrorLayout{Root: "/mirror", DataPath: "data/DE"}
	env := &testEnv{
		config:   memory.NewConfigStore(),
		state:    memory.NewMirrorState(layout),
		writer:   memory.NewDatasetWriter(),
		stations: memory.NewStationStore(),
	}
	env.tool = memory.NewMirrorTool("git version 2.43.0", env.state, map[string][]byte{
		"data/referencedata.json": []byte(referenceJSON),
		"data/DE/1/100.json":      []byte(recordJSON),
	})

	settings := services.NewSettingsService(env.config, "/data")
	mirror := services.NewMirrorSynchronizer(env.tool, env.state, nil, domain.DefaultRemoteURL, domain.DefaultMinToolVersion)
	extractor := services.NewExtractor(mirror, env.state, services.NewRecordLoader(100), services.NewMergeEngine(1), env.writer)

	SetWiring(func(dir string) (*Services, error) {
		env.wiredDir = dir
		return &Services{
			Settings:  settings,
			Config:    env.config,
			Mirror:    mirror,
			Extractor: extractor,
			NewImporter: func(source string) (driving.StationImporter, func() error, error) {
				return services.NewOCMStationImporter(extractor, env.stations), func() error { return nil }, nil
			},
		}, nil
	})
	t.Cleanup(func() {
		SetWiring(nil)
		app = nil
	})
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, configDir = false, ""
	extractOffline, importOffline = false, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func requireOutput(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}
