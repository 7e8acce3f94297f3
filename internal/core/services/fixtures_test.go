package services

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

const referenceJSON = `{
  "ConnectionTypes": [
    {"ID": 25, "Title": "Type 2 (Socket Only)", "FormalName": "IEC 62196-2 Type 2", "IsDiscontinued": false, "IsObsolete": false},
    {"ID": 33, "Title": "CCS (Type 2)", "FormalName": "IEC 62196-3 Configuration FF", "IsDiscontinued": false, "IsObsolete": false}
  ],
  "Countries": [
    {"ID": 87, "ISOCode": "DE", "ContinentCode": "EU", "Title": "Germany"},
    {"ID": 80, "ISOCode": "FR", "ContinentCode": "EU", "Title": "France"}
  ],
  "Operators": [
    {"ID": 7, "Title": "Acme", "WebsiteURL": "https://acme.example", "IsPrivateIndividual": false}
  ],
  "UsageTypes": [
    {"ID": 1, "Title": "Public"}
  ]
}`

const (
	recordBerlin = `{
  "ID": 100,
  "UUID": "b3c0ffee-0000-4000-8000-000000000100",
  "OperatorID": 7,
  "UsageTypeID": 1,
  "AddressInfo": {"ID": 1, "Title": "Alexanderplatz", "AddressLine1": "Alexanderplatz 1", "Town": "Berlin", "Postcode": "10178", "StateOrProvince": "Berlin", "CountryID": 87, "Latitude": 52.52, "Longitude": 13.41},
  "Connections": [
    {"ID": 1000, "ConnectionTypeID": 25, "PowerKW": 22, "Quantity": 2},
    {"ID": 1001, "ConnectionTypeID": 25, "PowerKW": 11}
  ]
}`
	recordHamburg = `{
  "ID": 200,
  "OperatorID": null,
  "AddressInfo": {"ID": 2, "Title": "Hafen", "Town": "Hamburg", "CountryID": null},
  "Connections": [
    {"ID": 2000, "ConnectionTypeID": 33, "PowerKW": 150}
  ]
}`
)

func testLayout() domain.MirrorLayout {
	return domain.MirrorLayout{Root: "/mirror", DataPath: "data/DE"}
}

// mirrorFiles is a populated upstream tree: reference data plus two records
// in separate directories.
func mirrorFiles() map[string][]byte {
	return map[string][]byte{
		"data/referencedata.json": []byte(referenceJSON),
		"data/DE/1/100.json":      []byte(recordBerlin),
		"data/DE/2/200.json":      []byte(recordHamburg),
	}
}

func mapFS(files map[string][]byte) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: data, Mode: 0644}
	}
	return fsys
}

func loadTestTables(t *testing.T) *domain.ReferenceTables {
	t.Helper()
	tables, err := LoadReferenceTables(strings.NewReader(referenceJSON))
	require.NoError(t, err)
	return tables
}

func decodeRecord(t *testing.T, origin, doc string) domain.RawRecord {
	t.Helper()
	fsys := mapFS(map[string][]byte{origin: []byte(doc)})
	rec, err := readRecord(fsys, origin)
	require.NoError(t, err)
	return rec
}

// newTestMirror returns an empty mirror and a tool that fills it on checkout.
func newTestMirror() (*memory.MirrorState, *memory.MirrorTool) {
	state := memory.NewMirrorState(testLayout())
	tool := memory.NewMirrorTool("git version 2.43.0", state, mirrorFiles())
	return state, tool
}

func recordFile(dir string, i int) string {
	return fmt.Sprintf("%s/%03d.json", dir, i)
}
