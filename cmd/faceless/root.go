package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/config"
	"github.com/aretw0/faceless/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceless",
	Short: "Faceless is a persona-driven chat backend",
	Long: `Faceless answers messages in the voice of a free-text persona, optionally masking
profanity, and keeps a catalogue of built-in and custom personas.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: faceless.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file, .env and environment, then applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}

// openService loads configuration and builds the application service.
func openService(ctx context.Context, cmd *cobra.Command, opts ...faceless.Option) (*faceless.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	svc, err := faceless.Open(ctx, cfg, append([]faceless.Option{faceless.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}
