package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
)

var (
	verbose     bool
	configPath  string
	storageDir  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datamaster",
	Short: "Store, query and export API response data",
	Long: `Session-scoped storage for structured API response data.

Each storage session is an isolated SQLite database holding deduplicated
records from one API/endpoint pairing. Stored data can be queried with
read-only SQL (including json_extract over the payload columns) and
exported to xlsx, csv or json files.

Quick Start:
  datamaster create --name users --api demo --endpoint users
  datamaster store <session-id> --data '{"id":1,"name":"a"}'
  datamaster query <session-id> 'SELECT COUNT(*) FROM api_data'
  datamaster export <session-id> --format csv

Configuration is read from --config, falling back to ~/.datamaster.yaml.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage", "", "Override the storage directory")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if storageDir != "" {
		cfg.StorageDir = storageDir
	}
	return cfg, nil
}

// openRegistry loads the config and opens the session registry.
func openRegistry() (*internal.Registry, *internal.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	registry, err := internal.OpenRegistry(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return registry, cfg, nil
}
