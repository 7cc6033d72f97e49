package config

import (
	"time"

	"quiver/internal/api"
)

const (
	// DefaultPort is the port used by the HTTP transports.
	DefaultPort = 8090

	// DefaultMetricsAddress is where the metrics endpoint listens.
	DefaultMetricsAddress = "localhost:9090"

	// DefaultCatalogDebounce is the quiet period before a changed catalog file is re-applied.
	DefaultCatalogDebounce = 250 * time.Millisecond
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() QuiverConfig {
	return QuiverConfig{
		Registry: api.DefaultRegistryConfig(),
		Server: ServerConfig{
			Name:      "quiver",
			Host:      "localhost",
			Port:      DefaultPort,
			Transport: MCPTransportStreamableHTTP,
		},
		Catalog: CatalogConfig{
			Debounce: DefaultCatalogDebounce,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: DefaultMetricsAddress,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "quiver",
			SampleRate:  1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
