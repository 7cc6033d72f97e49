package config

import (
	"time"

	"quiver/internal/api"
)

// QuiverConfig is the top-level configuration structure for quiver.
type QuiverConfig struct {
	Registry api.RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Server   ServerConfig       `yaml:"server" mapstructure:"server"`
	Catalog  CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Metrics  MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
	Tracing  TracingConfig      `yaml:"tracing" mapstructure:"tracing"`
	Logging  LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// ServerConfig defines the MCP protocol server.
type ServerConfig struct {
	Name      string `yaml:"name,omitempty" mapstructure:"name"`           // Server name reported at initialize (default: quiver)
	Host      string `yaml:"host,omitempty" mapstructure:"host"`           // Host to bind to (default: localhost)
	Port      int    `yaml:"port,omitempty" mapstructure:"port"`           // Port for HTTP transports (default: 8090)
	Transport string `yaml:"transport,omitempty" mapstructure:"transport"` // Transport to use (default: streamable-http)
}

// CatalogConfig points at the directory of YAML capability definitions.
type CatalogConfig struct {
	Dir      string        `yaml:"dir,omitempty" mapstructure:"dir"`
	Watch    bool          `yaml:"watch,omitempty" mapstructure:"watch"`
	Debounce time.Duration `yaml:"debounce,omitempty" mapstructure:"debounce"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Address string `yaml:"address,omitempty" mapstructure:"address"`
	Path    string `yaml:"path,omitempty" mapstructure:"path"`
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Exporter    string  `yaml:"exporter,omitempty" mapstructure:"exporter"` // stdout or none
	ServiceName string  `yaml:"serviceName,omitempty" mapstructure:"serviceName"`
	SampleRate  float64 `yaml:"sampleRate,omitempty" mapstructure:"sampleRate"`
}

// LoggingConfig controls pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" mapstructure:"format"` // text or json
}
