// Command card_catalog serves and manages the card catalog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/config"
	"github.com/gcbaptista/card-catalog/internal/engine"
	"github.com/gcbaptista/card-catalog/internal/logging"
)

var version = "dev"

// app carries what every subcommand needs once the root command has run.
type app struct {
	configPath string
	verbose    bool

	settings config.Settings
	logger   *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "card_catalog",
		Short:         "Faceted search over a trading card catalog",
		Long:          "card_catalog keeps a local copy of a card catalog, serves faceted search over HTTP and manages decks.",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newSyncCmd(a),
		newSearchCmd(a),
		newFacetsCmd(a),
		newDeckCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		settings.Log.Level = "debug"
	}

	logger, err := logging.New(settings.Log)
	if err != nil {
		return err
	}

	a.settings = settings
	a.logger = logger
	return nil
}

// openEngine opens the configured catalog. Callers must Close it.
func (a *app) openEngine(opts ...engine.Option) (*engine.Engine, error) {
	eng, err := engine.New(a.settings, a.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return eng, nil
}

// closeEngine closes eng and logs any failure.
func (a *app) closeEngine(eng *engine.Engine) {
	if err := eng.Close(); err != nil {
		a.logger.Error("failed to close catalog", zap.Error(err))
	}
}
