package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"quiver/internal/config"
	"quiver/pkg/logging"
)

// Application represents the main application structure that bootstraps and runs quiver.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: load configuration, initialize logging, build services
//  2. Execution phase: serve until the context is cancelled
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads and validates configuration, configures logging and
// initializes every service. Catalog load errors are logged and do not stop
// the bootstrap; the offending files are simply not registered.
func NewApplication(cfg *Config) (*Application, error) {
	qc, err := LoadConfig(cfg)
	if err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(qc.Logging.Level)
	logging.Init(level, qc.Logging.Format, logOutput(qc))

	services, err := InitializeServices(qc, cfg.Version)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// LoadConfig loads the configuration named by cfg, applies its overrides and
// validates the result. The result is also stored on cfg.
func LoadConfig(cfg *Config) (*config.QuiverConfig, error) {
	qc, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiver configuration: %w", err)
	}
	cfg.apply(&qc)
	if err := qc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.QuiverConfig = &qc
	return &qc, nil
}

// logOutput keeps stdout free for the protocol when serving over stdio.
func logOutput(qc *config.QuiverConfig) io.Writer {
	if qc.Server.Transport == config.MCPTransportStdio {
		return os.Stderr
	}
	return os.Stdout
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled or a component fails.
func (a *Application) Run(ctx context.Context) error {
	return runServer(ctx, a.config.QuiverConfig, a.services)
}
