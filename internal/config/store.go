package config

import (
	"os"
	"path/filepath"
)

// StoreConfig holds record store configuration for the central store and the
// per-directory satellites.
type StoreConfig struct {
	// CentralPath is the central database file. Empty resolves to the
	// per-user application data location.
	CentralPath string `mapstructure:"central_path" yaml:"central_path"`

	// SatelliteDirName is the hidden folder created under each watched
	// directory to hold its satellite store.
	SatelliteDirName string `mapstructure:"satellite_dir_name" yaml:"satellite_dir_name"`

	// DatabaseName is the store file name inside a satellite folder.
	DatabaseName string `mapstructure:"database_name" yaml:"database_name"`

	// DuplicateScanLimit bounds the numbered-duplicate suffix scan.
	DuplicateScanLimit int `mapstructure:"duplicate_scan_limit" yaml:"duplicate_scan_limit"`

	// ReleaseDelay is how long to wait after releasing connections before
	// touching a satellite directory on disk.
	ReleaseDelay string `mapstructure:"release_delay" yaml:"release_delay"`

	// DeleteRetries is the number of removal attempts per satellite.
	DeleteRetries int `mapstructure:"delete_retries" yaml:"delete_retries"`

	// PushPrune removes satellite rows that no longer exist centrally during
	// Push. Off by default: satellites act as append-only backups.
	PushPrune bool `mapstructure:"push_prune" yaml:"push_prune"`
}

// ResolveCentralPath returns the configured central database path, falling
// back to the per-user config directory.
func (c StoreConfig) ResolveCentralPath() (string, error) {
	if c.CentralPath != "" {
		return c.CentralPath, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tagsync", "central.db"), nil
}
