package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/aimtune/internal/adapters/mcpserver"
	service "github.com/okian/aimtune/internal/app"
	"github.com/okian/aimtune/internal/config"
	"github.com/okian/aimtune/internal/loadtest"
	"github.com/okian/aimtune/internal/server"
	"github.com/okian/aimtune/pkg/logger"
)

// loadConfig loads the server configuration and applies its log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aimtune HTTP server (foreground)",
	Long: `Run the aimtune HTTP server in the foreground.

Configuration comes from defaults, then the YAML file named by AIMTUNE_CONFIG,
then AIMTUNE_* environment variables. --addr overrides the listen address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		log := logger.Get()
		svc := service.New(server.ServiceOptions(cfg, log.Named("service"))...)
		return server.New(cfg, svc, server.WithLogger(log.Named("server"))).Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, e.g. :9080")
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the engine as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		svc := service.New(server.ServiceOptions(cfg, logger.Get().Named("service"))...)
		if err := svc.Start(cmd.Context()); err != nil {
			return err
		}
		defer svc.Stop()

		s := mcpserver.NewServer(svc, version)
		return mcpserver.ServeStdio(cmd.Context(), s, os.Stdin, cmd.OutOrStdout())
	},
}

// --- bench ---

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Load test a running server and verify every answer",
	Long: `Load test a running server with generated calculations and feedback.
Every result is checked against the game's slider bounds.

Examples:
  aimtune bench
  aimtune bench -n 50000 --workers 32 --url http://localhost:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadtest.NewConfig()
		cfg.BaseURL = baseURL
		cfg.Calculations, _ = cmd.Flags().GetInt("count")
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
		cfg.FeedbackRatio, _ = cmd.Flags().GetFloat64("feedback-ratio")
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")

		report, err := loadtest.NewRunner(cfg).Run(cmd.Context())
		if report.Duration > 0 {
			if jsonOutput {
				if werr := writeJSONOut(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "calculations=%d rejected=%d failed=%d feedback=%d duplicate=%d violations=%d duration=%s rate=%.1f/s\n",
					report.Calculations, report.Rejected, report.CalculationFailed, report.Feedback,
					report.FeedbackDuplicate, len(report.Violations), report.Duration.Round(time.Millisecond), report.PerSecond())
			}
		}
		return err
	},
}

func init() {
	f := benchCmd.Flags()
	f.IntP("count", "n", loadtest.DefaultCalculations, "number of calculations")
	f.Int("workers", loadtest.DefaultWorkers, "concurrent workers")
	f.Duration("timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	f.Float64("feedback-ratio", loadtest.DefaultFeedbackRatio, "share of results that get feedback")
	f.Uint64("seed", 1, "request generator seed")
	f.Bool("verbose", false, "log every violation")
}
