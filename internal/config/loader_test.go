package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createTempConfigFile(t *testing.T, dir string, filename string, content interface{}) string {
	t.Helper()
	data, err := yaml.Marshal(content)
	require.NoError(t, err)
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	createTempConfigFile(t, dir, configFileName, map[string]interface{}{
		"registry": map[string]interface{}{
			"enforceVersioning": true,
			"namePrefix":        "acme__",
		},
		"server": map[string]interface{}{
			"transport": "stdio",
		},
		"catalog": map[string]interface{}{
			"dir":      "/srv/catalog",
			"watch":    true,
			"debounce": "1s",
		},
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Registry.EnforceVersioning)
	assert.Equal(t, "acme__", cfg.Registry.NamePrefix)
	assert.True(t, cfg.Registry.ValidateOnRegister, "unset keys keep defaults")
	assert.Equal(t, MCPTransportStdio, cfg.Server.Transport)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "/srv/catalog", cfg.Catalog.Dir)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, time.Second, cfg.Catalog.Debounce)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createTempConfigFile(t, t.TempDir(), "quiver.yaml", map[string]interface{}{
		"logging": map[string]interface{}{"level": "debug", "format": "json"},
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	createTempConfigFile(t, dir, configFileName, map[string]interface{}{
		"server": map[string]interface{}{"port": 7000},
	})
	t.Setenv("QUIVER_SERVER_PORT", "7100")
	t.Setenv("QUIVER_REGISTRY_NAMEPREFIX", "env__")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "env__", cfg.Registry.NamePrefix)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".env"), []byte("QUIVER_METRICS_ENABLED=true\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("QUIVER_METRICS_ENABLED") })

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*QuiverConfig)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *QuiverConfig) {},
		},
		{
			name:       "unknown transport",
			mutate:     func(c *QuiverConfig) { c.Server.Transport = "websocket" },
			wantFields: []string{"server.transport"},
		},
		{
			name:       "port out of range",
			mutate:     func(c *QuiverConfig) { c.Server.Port = 70000 },
			wantFields: []string{"server.port"},
		},
		{
			name: "stdio ignores port",
			mutate: func(c *QuiverConfig) {
				c.Server.Transport = MCPTransportStdio
				c.Server.Port = 0
			},
		},
		{
			name:       "empty prefix with validation",
			mutate:     func(c *QuiverConfig) { c.Registry.NamePrefix = "" },
			wantFields: []string{"registry.namePrefix"},
		},
		{
			name: "empty prefix without validation",
			mutate: func(c *QuiverConfig) {
				c.Registry.NamePrefix = ""
				c.Registry.ValidateOnRegister = false
			},
		},
		{
			name:       "watch without dir",
			mutate:     func(c *QuiverConfig) { c.Catalog.Watch = true },
			wantFields: []string{"catalog.dir"},
		},
		{
			name: "bad tracing and logging",
			mutate: func(c *QuiverConfig) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "jaeger"
				c.Logging.Level = "loud"
			},
			wantFields: []string{"tracing.exporter", "logging.level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}
