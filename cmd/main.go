package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rovora/search-service/internal/config"
	pkglog "github.com/rovora/search-service/pkg/log"
)

const serviceName = "search-service"

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Federated search over Rovora games, users and codex entries.",
	// Running without a subcommand serves.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l := pkglog.L()
		l.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig loads configuration and initialises the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: serviceName,
	})
	return cfg, nil
}
