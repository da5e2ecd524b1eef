package config

import "github.com/spf13/viper"

func GetDefault() BaseConfig {
	return BaseConfig{
		ShutdownTimeout: "10s",

		Log: LogConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Store: StoreConfig{
			CentralPath:        "",
			SatelliteDirName:   ".tagsync",
			DatabaseName:       "tags.db",
			DuplicateScanLimit: 20,
			ReleaseDelay:       "150ms",
			DeleteRetries:      3,
			PushPrune:          false,
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("store.central_path", defaults.Store.CentralPath)
	viper.SetDefault("store.satellite_dir_name", defaults.Store.SatelliteDirName)
	viper.SetDefault("store.database_name", defaults.Store.DatabaseName)
	viper.SetDefault("store.duplicate_scan_limit", defaults.Store.DuplicateScanLimit)
	viper.SetDefault("store.release_delay", defaults.Store.ReleaseDelay)
	viper.SetDefault("store.delete_retries", defaults.Store.DeleteRetries)
	viper.SetDefault("store.push_prune", defaults.Store.PushPrune)
}
