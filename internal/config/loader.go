package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quiver/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	userConfigDir  = ".config/quiver"
	configFileName = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. QUIVER_SERVER_PORT.
	EnvPrefix = "QUIVER"
)

// GetDefaultConfigPath returns ~/.config/quiver, or the empty string when the
// home directory cannot be determined.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from configPath, which may be a YAML file or
// a directory containing config.yaml. An empty path means the default
// directory. A missing file is not an error; defaults and environment
// overrides still apply.
//
// Precedence, highest first: QUIVER_* environment variables (including
// those set by an optional .env file in the working directory), the config
// file, built-in defaults.
func LoadConfig(configPath string) (QuiverConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return QuiverConfig{}, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, GetDefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFilePath := resolveConfigFile(configPath)
	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); errors.Is(err, fs.ErrNotExist) {
			logging.Info("ConfigLoader", "No config found at %s, using defaults", configFilePath)
		} else {
			v.SetConfigFile(configFilePath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return QuiverConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
			}
			logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
		}
	}

	var cfg QuiverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return QuiverConfig{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

func resolveConfigFile(configPath string) string {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
		if configPath == "" {
			return ""
		}
	}
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		return filepath.Join(configPath, configFileName)
	}
	if ext := filepath.Ext(configPath); ext == ".yaml" || ext == ".yml" {
		return configPath
	}
	return filepath.Join(configPath, configFileName)
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d QuiverConfig) {
	v.SetDefault("registry.validateOnRegister", d.Registry.ValidateOnRegister)
	v.SetDefault("registry.allowDuplicateNames", d.Registry.AllowDuplicateNames)
	v.SetDefault("registry.enforceVersioning", d.Registry.EnforceVersioning)
	v.SetDefault("registry.maxRetries", d.Registry.MaxRetries)
	v.SetDefault("registry.enableLogging", d.Registry.EnableLogging)
	v.SetDefault("registry.namePrefix", d.Registry.NamePrefix)

	v.SetDefault("server.name", d.Server.Name)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.transport", d.Server.Transport)

	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("catalog.debounce", d.Catalog.Debounce)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.serviceName", d.Tracing.ServiceName)
	v.SetDefault("tracing.sampleRate", d.Tracing.SampleRate)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
