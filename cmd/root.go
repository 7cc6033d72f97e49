package cmd

import (
	"errors"
	"os"

	"quiver/internal/catalog"
	"quiver/internal/config"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalidConfig indicates the configuration failed validation.
	ExitCodeInvalidConfig = 2
	// ExitCodeCatalogErrors indicates one or more catalog files could not be loaded.
	ExitCodeCatalogErrors = 3
)

var (
	// configPath points at a config file or a directory holding config.yaml.
	configPath string
	// debug raises the log level to debug.
	debug bool
)

// rootCmd represents the base command for the quiver application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quiver",
	Short: "A capability registry for MCP tools and prompts",
	Long: `quiver keeps a registry of MCP tools and prompts, loaded from a catalog
directory of YAML files, and serves it to AI assistants over the Model
Context Protocol. A set of meta-tools lets clients discover, describe and
call registry entries without knowing their names up front.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "quiver version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		return ExitCodeInvalidConfig
	}

	var loadErrs catalog.LoadErrors
	if errors.As(err, &loadErrs) {
		return ExitCodeCatalogErrors
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file or directory (default is $HOME/.config/quiver/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newValidateCmd())
}
