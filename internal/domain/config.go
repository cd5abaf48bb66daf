package domain

// APIConfig holds the REST backend settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// FeedConfig holds the realtime notification feed settings.
type FeedConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StorageConfig holds the persisted credential cache settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// BridgeConfig holds the localhost bridge API settings.
type BridgeConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Path           string `mapstructure:"path"`
	Level          string `mapstructure:"level"`
	MaxFileSize    int    `mapstructure:"max_file_size"`
	MaxBackupCount int    `mapstructure:"max_backup_count"`
}

// UpdatesConfig holds the release update check settings.
type UpdatesConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// RevalidationConfig holds the scheduled session revalidation settings.
type RevalidationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Config holds the application's configuration, mapped from config.toml.
type Config struct {
	Version       string // internal, not from config file
	ConfigPath    string // internal, not from config file
	StorageSecret string `mapstructure:"storage_secret"`
	SessionSecret string `mapstructure:"session_secret"`

	API          APIConfig          `mapstructure:"api"`
	Feed         FeedConfig         `mapstructure:"feed"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Bridge       BridgeConfig       `mapstructure:"bridge"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Updates      UpdatesConfig      `mapstructure:"updates"`
	Revalidation RevalidationConfig `mapstructure:"revalidation"`
}
