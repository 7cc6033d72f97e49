package app

import (
	"errors"
	"fmt"

	"quiver/internal/api"
	"quiver/internal/catalog"
	"quiver/internal/config"
	"quiver/internal/metatools"
	"quiver/internal/metrics"
	"quiver/internal/registry"
	"quiver/internal/server"
	"quiver/internal/tracing"
	"quiver/pkg/logging"
)

// Services holds every component the application runs.
//
// Initialization order:
//  1. Registry with the configured policy
//  2. Metrics collector, subscribed before anything registers
//  3. Meta-tools
//  4. Catalog, loaded from the configured directory, plus its watcher
//  5. Tracer provider and MCP server
type Services struct {
	Registry  *registry.Registry
	MetaTools *metatools.Provider
	Catalog   *catalog.Catalog
	Watcher   *catalog.Watcher // nil unless catalog.watch is set
	Metrics   *metrics.Collector
	Tracing   *tracing.Provider
	Server    *server.Server
}

// InitializeServices builds all services from qc. buildVersion is reported
// to MCP clients at initialize.
func InitializeServices(qc *config.QuiverConfig, buildVersion string) (*Services, error) {
	reg := registry.New(qc.Registry)
	s := &Services{Registry: reg}

	if qc.Metrics.Enabled {
		s.Metrics = metrics.NewCollector(reg.GetStats)
		reg.AddEventListener(s.Metrics)
	}

	s.MetaTools = metatools.NewProvider(reg)
	if err := s.MetaTools.Register(); err != nil {
		return nil, fmt.Errorf("failed to register meta-tools: %w", err)
	}

	s.Catalog = catalog.New(reg)
	if qc.Catalog.Dir != "" {
		if err := s.Catalog.LoadDir(qc.Catalog.Dir); err != nil {
			var loadErrs catalog.LoadErrors
			if !errors.As(err, &loadErrs) {
				return nil, fmt.Errorf("failed to load catalog %s: %w", qc.Catalog.Dir, err)
			}
			for _, le := range loadErrs {
				logging.Warn("Bootstrap", "Skipping catalog file: %v", le)
			}
		}
		logging.Info("Bootstrap", "Loaded %d catalog entries from %s", len(s.Catalog.Names()), qc.Catalog.Dir)

		if qc.Catalog.Watch {
			s.Watcher = catalog.NewWatcher(qc.Catalog.Dir, s.Catalog, qc.Catalog.Debounce)
		}
	}

	tp, err := tracing.NewProvider(qc.Tracing, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.Tracing = tp

	s.Server = server.New(reg, qc.Server,
		server.WithTracer(tp.Tracer()),
		server.WithVersion(buildVersion),
	)
	return s, nil
}

// LoadRegistry builds a registry with meta-tools and the catalog in dir,
// for one-shot commands. Catalog problems come back as catalog.LoadErrors
// alongside the registry holding everything that did load.
func LoadRegistry(cfg api.RegistryConfig, dir string) (*registry.Registry, error) {
	reg := registry.New(cfg)
	if err := metatools.NewProvider(reg).Register(); err != nil {
		return nil, fmt.Errorf("failed to register meta-tools: %w", err)
	}
	if dir == "" {
		return reg, nil
	}
	if err := catalog.New(reg).LoadDir(dir); err != nil {
		return reg, err
	}
	return reg, nil
}
