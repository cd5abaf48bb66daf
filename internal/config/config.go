package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/spf13/viper"
)

var configTemplate = `# config.toml

# Secret used to seal credential cache values at rest.
# Generated automatically on the first run if not set.
# Default: "{{ .storageSecret }}" (dynamically generated)
storage_secret = "{{ .storageSecret }}"

# Secret for the bridge UI cookie session.
# Generated automatically on the first run if not set.
# Default: "{{ .sessionSecret }}" (dynamically generated)
session_secret = "{{ .sessionSecret }}"

[api]
  # Base URL of the storefront REST backend.
  # Default: "https://api.gourmand.example"
  base_url = "https://api.gourmand.example"

  # One fixed timeout applied to every request. There is no per-request
  # override and no backoff.
  # Default: 15
  timeout_seconds = 15

[feed]
  # Base URL of the realtime notification feed.
  # Default: "https://feed.gourmand.example"
  base_url = "https://feed.gourmand.example"

[storage]
  # Directory for the credential cache database.
  # Leave empty to store next to the config file.
  # Default: ""
  path = ""

[bridge]
  # Hostname or IP address for the bridge API to listen on.
  # Default: "{{ .host }}"
  host = "{{ .host }}"

  # Port for the bridge API to listen on.
  # Default: 8585
  port = 8585

  # Base URL for serving the bridge under a subdirectory.
  # Optional.
  # Default: ""
  #base_url = ""

[logging]
  # Log file path.
  # If empty or not set, logs will be written to standard output (stdout).
  # Use forward slashes for paths (e.g., "log/").
  # Optional.
  # Default: ""
  path = "log/"

  # Log level.
  # Options: "ERROR", "WARN", "INFO", "DEBUG", "TRACE"
  # Default: "DEBUG"
  level = "DEBUG"

  # Maximum size of a log file in megabytes (MB) before it is rotated.
  # Default: 50
  max_file_size = 50

  # Maximum number of old log files to keep.
  # Default: 3
  max_backup_count = 3

[updates]
  # Check for new client releases.
  # Default: true
  enabled = true

  # Release metadata endpoint.
  # Default: "https://releases.gourmand.example/latest"
  endpoint = "https://releases.gourmand.example/latest"

[revalidation]
  # Periodically revalidate the stored token against the backend.
  # Default: true
  enabled = true

  # Cron schedule for the revalidation job.
  # Default: "0 * * * *" (hourly)
  schedule = "0 * * * *"
`

var generateRandomString = func(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func writeConfig(configPath string, configFile string) error {
	cfgPath := filepath.Join(configPath, configFile)

	// check if configPath exists, if not create it
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(configPath, os.ModePerm)
		if err != nil {
			log.Println(err)
			return err
		}
	}

	// check if config exists, if not create it
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		// set default host
		host := "127.0.0.1"

		if _, dockerErr := os.Stat("/.dockerenv"); dockerErr == nil {
			host = "0.0.0.0"
		} else if pd, cgroupErr := os.Open("/proc/1/cgroup"); cgroupErr == nil {
			defer func(pd *os.File) {
				if errClose := pd.Close(); errClose != nil {
					log.Printf("error closing proc/cgroup: %q", errClose)
				}
			}(pd)
			b := make([]byte, 4096)
			if _, readErr := pd.Read(b); readErr == nil {
				if strings.Contains(string(b), "/docker") || strings.Contains(string(b), "/lxc") {
					host = "0.0.0.0"
				}
			}
		}

		f, createErr := os.Create(cfgPath)
		if createErr != nil {
			log.Printf("error creating file: %q", createErr)
			return createErr
		}
		defer func(f *os.File) {
			if errClose := f.Close(); errClose != nil {
				log.Printf("error closing file: %q", errClose)
			}
		}(f)

		storageSecretVal, secretErr := generateRandomString(16)
		if secretErr != nil {
			log.Printf("Failed to generate storage secret: %v. Using a default placeholder.", secretErr)
			storageSecretVal = "fallback-please-replace-this-secret-immediately"
		}

		sessionSecretVal, secretErr := generateRandomString(16)
		if secretErr != nil {
			log.Printf("Failed to generate session secret: %v. Using a default placeholder.", secretErr)
			sessionSecretVal = "fallback-please-replace-this-secret-immediately"
		}

		tmpl, tmplErr := template.New("config").Parse(configTemplate)
		if tmplErr != nil {
			return errors.Wrap(tmplErr, "could not create config template")
		}

		tmplVars := map[string]string{
			"host":          host,
			"storageSecret": storageSecretVal,
			"sessionSecret": sessionSecretVal,
		}

		var buffer bytes.Buffer
		if execErr := tmpl.Execute(&buffer, &tmplVars); execErr != nil {
			return errors.Wrap(execErr, "could not write config template output")
		}

		if _, writeErr := f.WriteString(buffer.String()); writeErr != nil {
			log.Printf("error writing contents to file: %v %q", configPath, writeErr)
			return writeErr
		}

		return f.Sync()
	}

	return nil
}

type Config interface {
	DynamicReload(log logger.Logger)
}

type AppConfig struct {
	Config *domain.Config
	m      sync.Mutex
}

func New(configPath string, version string) *AppConfig {
	c := &AppConfig{}
	c.defaults()
	c.Config.Version = version
	c.Config.ConfigPath = configPath

	c.load(configPath)

	return c
}

func (c *AppConfig) defaults() {
	c.Config = &domain.Config{
		Version:       "dev",
		ConfigPath:    "",
		StorageSecret: "storage-secret-key", // overwritten by generated value if not in file
		SessionSecret: "secret-session-key",
		API: domain.APIConfig{
			BaseURL:        "https://api.gourmand.example",
			TimeoutSeconds: 15,
		},
		Feed: domain.FeedConfig{
			BaseURL: "https://feed.gourmand.example",
		},
		Storage: domain.StorageConfig{
			Path: "",
		},
		Bridge: domain.BridgeConfig{
			Host:    "127.0.0.1",
			Port:    8585,
			BaseURL: "",
		},
		Logging: domain.LoggingConfig{
			Path:           "",
			Level:          "DEBUG",
			MaxFileSize:    50,
			MaxBackupCount: 3,
		},
		Updates: domain.UpdatesConfig{
			Enabled:  true,
			Endpoint: "https://releases.gourmand.example/latest",
		},
		Revalidation: domain.RevalidationConfig{
			Enabled:  true,
			Schedule: "0 * * * *",
		},
	}
}

func (c *AppConfig) load(configPath string) {
	viper.SetConfigType("toml")
	configPath = path.Clean(configPath)

	if configPath != "" {
		if err := writeConfig(configPath, "config.toml"); err != nil {
			log.Printf("writeConfig error during load: %q", err)
			// continue to attempt reading, defaults might be used or file might exist partially
		}
		viper.SetConfigFile(path.Join(configPath, "config.toml"))
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/gourmand")
		viper.AddConfigPath("$HOME/.gourmand")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Config file not found, using defaults: %s", viper.ConfigFileUsed())
		} else {
			log.Printf("Config read error: %q. Using defaults.", err)
		}
	}

	if err := viper.Unmarshal(&c.Config); err != nil {
		log.Fatalf("Could not unmarshal config file into struct: %v. Config file used: %s", err, viper.ConfigFileUsed())
	}
}

func (c *AppConfig) DynamicReload(log logger.Logger) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		c.m.Lock()
		defer c.m.Unlock()

		log.Info().Msgf("Config file changed: %s. Reloading configuration.", e.Name)

		if err := viper.ReadInConfig(); err != nil {
			log.Error().Err(err).Msg("Error reading config file during dynamic reload")
			return
		}

		var newConfig domain.Config
		// preserve version and configPath as they are not from the file
		newConfig.Version = c.Config.Version
		newConfig.ConfigPath = c.Config.ConfigPath

		if err := viper.Unmarshal(&newConfig); err != nil {
			log.Error().Err(err).Msg("Error unmarshalling config during dynamic reload")
			return
		}

		c.Config = &newConfig

		log.SetLogLevel(c.Config.Logging.Level)

		log.Debug().Msg("Configuration reloaded successfully!")
	})
	viper.WatchConfig()
}
