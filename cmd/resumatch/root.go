package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/config"
	"github.com/gcbaptista/resumatch/internal/engine"
	"github.com/gcbaptista/resumatch/internal/logger"
)

const (
	app = "resumatch"
)

var (
	// Used for flags.
	cfgFile string
	v       = config.NewViper()

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "resumatch ranks résumés against job descriptions",
		Long:          "resumatch ingests résumés (PDF, images, DOCX, plain text), extracts their sections and skills, and ranks them against a job description by text similarity, skill overlap and section coverage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (environment variables prefixed "+config.EnvPrefix+"_ override it)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for stored documents (default "+config.DefaultDataDir+")")

	mustBindPFlag(rootCmd, "log.debug", "debug")
	mustBindPFlag(rootCmd, "log.json", "json")
	mustBindPFlag(rootCmd, "data_dir", "data-dir")
}

func mustBindPFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s to %s: %v", flag, key, err))
	}
}

// loadSettings reads the configuration and builds the process logger.
func loadSettings() (*config.Settings, *zap.Logger, error) {
	settings, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(settings.Log.JSON, settings.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return settings, log, nil
}

// openEngine loads the configuration and starts an engine over it.
func openEngine(ctx context.Context) (*engine.Engine, *zap.Logger, error) {
	settings, log, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(ctx, engine.Options{Settings: settings, Logger: log})
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return eng, log, nil
}
