// Package main provides the CLI entry point for the conversational tutor
// gateway.
//
// The gateway bridges browser sessions to the upstream realtime AI
// service: one WebSocket pair per conversation, with a whitelist on
// client commands and tool-call dispatch for grading and quizzes.
//
// # Basic Usage
//
// Start the server:
//
//	tutor-gateway serve --config tutor-gateway.yaml
//
// Inspect the scenario catalog:
//
//	tutor-gateway scenarios
//
// # Environment Variables
//
//   - OPENAI_API_KEY: API key for the upstream realtime service
//   - TUTOR_GATEWAY_LOG_LEVEL: overrides the configured log level
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/config"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/gateway"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/observability"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/scenarios"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/tools"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tutor-gateway",
		Short:        "Realtime conversational tutor gateway",
		Long:         "Bridges browser voice sessions to the upstream realtime AI service, one session actor per conversation.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		buildServeCmd(),
		buildScenariosCmd(),
	)
	return rootCmd
}

func buildServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := observability.NewLogger(observability.LogConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			slog.SetDefault(logger)

			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
			registry := tools.NewRegistry()
			server := gateway.NewServer(cfg, catalog, registry, logger, metrics)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				server.Shutdown(context.Background())
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	return cmd
}

func buildScenariosCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLEVEL\tTITLE")
			for _, s := range catalog.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Level, s.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	return cmd
}

func loadCatalog(cfg *config.Config) (*scenarios.Catalog, error) {
	if cfg.Scenarios.Dir != "" {
		return scenarios.NewCatalogFromDir(cfg.Scenarios.Dir)
	}
	return scenarios.NewEmbeddedCatalog()
}
