package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/agenthands/upsampler/internal/app"
	"github.com/agenthands/upsampler/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "upsampler",
		Short: "Prompt upsampling and judged evaluation for text-to-image models",
		Long: "upsampler rewrites short prompts into descriptive captions using exemplar-guided candidates, " +
			"renders them with a diffusion backend and scores the images with a vision judge.",
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or config/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

// loadConfig reads the config file, then environment overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.toml"
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	slog.SetDefault(app.NewLogger(cfg.Log, os.Stderr))
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app.App, error) {
	a, err := app.New(ctx, cfg, app.Components{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}
