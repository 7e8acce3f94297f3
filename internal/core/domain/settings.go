package domain

// Defaults for the upstream Open Charge Map export.
const (
	DefaultRemoteURL       = "https://github.com/openchargemap/ocm-export"
	DefaultSparsePath      = "data/DE"
	DefaultMinToolVersion  = "2.25.0"
	DefaultPerDirectoryCap = 100
	DefaultMergeWorkers    = 1
	DefaultFRLandingURL    = "https://transport.data.gouv.fr/resources/81623"
	DefaultFRLinkPrefix    = "https://www.data.gouv.fr/fr/datasets"
	DefaultFRFilename      = "france_stations.csv"
)

// MirrorSettings configures the local mirror of the upstream export.
type MirrorSettings struct {
	// Root is the working tree of the mirror. Empty means <data dir>/ocm-export.
	Root string

	// RemoteURL is the repository to clone.
	RemoteURL string

	// SparsePath is the only subtree checked out.
	SparsePath string

	// MinToolVersion is the oldest mirroring tool accepted.
	MinToolVersion string
}

// ExtractSettings configures loading and merging.
type ExtractSettings struct {
	// PerDirectoryCap bounds the files read from one directory.
	PerDirectoryCap int

	// Workers is the number of concurrent merge workers. 1 keeps the run sequential.
	Workers int
}

// FranceSettings configures the French government pipeline.
type FranceSettings struct {
	LandingURL string
	LinkPrefix string
	Filename   string
}

// AppSettings holds all persisted settings.
type AppSettings struct {
	// DataDir holds the mirror, downloads and the station database.
	DataDir string

	Mirror  MirrorSettings
	Extract ExtractSettings
	France  FranceSettings
}

// Layout returns the mirror layout for these settings.
func (s AppSettings) Layout() MirrorLayout {
	return MirrorLayout{Root: s.Mirror.Root, DataPath: s.Mirror.SparsePath}
}

// DefaultAppSettings returns settings with all defaults applied.
// DataDir and Mirror.Root are resolved by the settings service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Mirror: MirrorSettings{
			RemoteURL:      DefaultRemoteURL,
			SparsePath:     DefaultSparsePath,
			MinToolVersion: DefaultMinToolVersion,
		},
		Extract: ExtractSettings{
			PerDirectoryCap: DefaultPerDirectoryCap,
			Workers:         DefaultMergeWorkers,
		},
		France: FranceSettings{
			LandingURL: DefaultFRLandingURL,
			LinkPrefix: DefaultFRLinkPrefix,
			Filename:   DefaultFRFilename,
		},
	}
}
