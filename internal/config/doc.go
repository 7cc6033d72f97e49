// Package config provides configuration management for quiver.
//
// Configuration is read from a single YAML file, by default
// ~/.config/quiver/config.yaml. Commands accept --config with either the
// file or its directory.
//
// # Sources
//
// Values are layered, highest precedence first:
//   - QUIVER_* environment variables, with dots replaced by underscores
//     (QUIVER_SERVER_PORT, QUIVER_REGISTRY_NAMEPREFIX)
//   - a .env file in the working directory, loaded into the environment
//   - the config file
//   - built-in defaults (GetDefaultConfig)
//
// # Example
//
//	registry:
//	  validateOnRegister: true
//	  enforceVersioning: true
//	  namePrefix: quiver__
//	server:
//	  transport: streamable-http
//	  port: 8090
//	catalog:
//	  dir: ./catalog
//	  watch: true
//	metrics:
//	  enabled: true
//	  address: localhost:9090
//
// Validate reports every problem at once as ValidationErrors.
package config
