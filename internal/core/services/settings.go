package services

import (
	"fmt"
	"path/filepath"

	"golang.org/x/mod/semver"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDataDir         = "storage.data_dir"
	KeyMirrorRoot      = "mirror.root"
	KeyMirrorRemote    = "mirror.remote"
	KeyMirrorSparse    = "mirror.sparse_path"
	KeyGitMinVersion   = "git.min_version"
	KeyPerDirectoryCap = "extract.per_directory_cap"
	KeyMergeWorkers    = "extract.workers"
	KeyFRLandingURL    = "fr.landing_url"
	KeyFRLinkPrefix    = "fr.link_prefix"
	KeyFRFilename      = "fr.filename"
)

// SettingKeys lists every key the settings service reads, in display order.
var SettingKeys = []string{
	KeyDataDir,
	KeyMirrorRoot,
	KeyMirrorRemote,
	KeyMirrorSparse,
	KeyGitMinVersion,
	KeyPerDirectoryCap,
	KeyMergeWorkers,
	KeyFRLandingURL,
	KeyFRLinkPrefix,
	KeyFRFilename,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	baseDir     string
}

// NewSettingsService creates a new settings service.
// baseDir is the default data directory (typically the config directory).
func NewSettingsService(configStore driven.ConfigStore, baseDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		baseDir:     baseDir,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := s.GetDefaults()

	settings := &domain.AppSettings{
		DataDir: s.getString(KeyDataDir, defaults.DataDir),
		Mirror: domain.MirrorSettings{
			RemoteURL:      s.getString(KeyMirrorRemote, defaults.Mirror.RemoteURL),
			SparsePath:     s.getString(KeyMirrorSparse, defaults.Mirror.SparsePath),
			MinToolVersion: s.getString(KeyGitMinVersion, defaults.Mirror.MinToolVersion),
		},
		Extract: domain.ExtractSettings{
			PerDirectoryCap: s.getInt(KeyPerDirectoryCap, defaults.Extract.PerDirectoryCap),
			Workers:         s.getInt(KeyMergeWorkers, defaults.Extract.Workers),
		},
		France: domain.FranceSettings{
			LandingURL: s.getString(KeyFRLandingURL, defaults.France.LandingURL),
			LinkPrefix: s.getString(KeyFRLinkPrefix, defaults.France.LinkPrefix),
			Filename:   s.getString(KeyFRFilename, defaults.France.Filename),
		},
	}
	// The mirror follows the data directory unless pinned.
	settings.Mirror.Root = s.getString(KeyMirrorRoot, filepath.Join(settings.DataDir, "ocm-export"))

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyDataDir, settings.DataDir},
		{KeyMirrorRoot, settings.Mirror.Root},
		{KeyMirrorRemote, settings.Mirror.RemoteURL},
		{KeyMirrorSparse, settings.Mirror.SparsePath},
		{KeyGitMinVersion, settings.Mirror.MinToolVersion},
		{KeyPerDirectoryCap, settings.Extract.PerDirectoryCap},
		{KeyMergeWorkers, settings.Extract.Workers},
		{KeyFRLandingURL, settings.France.LandingURL},
		{KeyFRLinkPrefix, settings.France.LinkPrefix},
		{KeyFRFilename, settings.France.Filename},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// GetDefaults returns default settings rooted at the base directory.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.DataDir = s.baseDir
	defaults.Mirror.Root = filepath.Join(s.baseDir, "ocm-export")
	return defaults
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.DataDir == "" {
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, KeyDataDir)
	}
	if settings.Mirror.RemoteURL == "" {
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, KeyMirrorRemote)
	}
	if settings.Mirror.SparsePath == "" || filepath.IsAbs(settings.Mirror.SparsePath) {
		return fmt.Errorf("%w: %s must be a relative path", domain.ErrInvalidInput, KeyMirrorSparse)
	}
	if !semver.IsValid("v" + settings.Mirror.MinToolVersion) {
		return fmt.Errorf("%w: %s %q is not a version", domain.ErrInvalidInput,
			KeyGitMinVersion, settings.Mirror.MinToolVersion)
	}
	if settings.Extract.PerDirectoryCap < 1 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, KeyPerDirectoryCap)
	}
	if settings.Extract.Workers < 1 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, KeyMergeWorkers)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}
