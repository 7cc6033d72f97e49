package app

import (
	"quiver/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Build version reported to MCP clients
	Version string

	// Custom configuration path (optional); a file or a directory holding config.yaml
	ConfigPath string

	// Command-line overrides, applied on top of the loaded configuration when set
	Transport  string
	CatalogDir string
	Watch      *bool

	// Loaded configuration
	QuiverConfig *config.QuiverConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}

// apply copies the command-line overrides into qc.
func (c *Config) apply(qc *config.QuiverConfig) {
	if c.Transport != "" {
		qc.Server.Transport = c.Transport
	}
	if c.CatalogDir != "" {
		qc.Catalog.Dir = c.CatalogDir
	}
	if c.Watch != nil {
		qc.Catalog.Watch = *c.Watch
	}
	if c.Debug {
		qc.Logging.Level = "debug"
	}
}
