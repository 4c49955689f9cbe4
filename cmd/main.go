package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/aimtune/internal/app"
	"github.com/okian/aimtune/internal/config"
	"github.com/okian/aimtune/internal/server"
	"github.com/okian/aimtune/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "aimtune exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run loads configuration (defaults -> optional file -> env) and serves until
// ctx is done.
func run(ctx context.Context) error {
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(server.ServiceOptions(cfg, log.Named("service"))...)
	return server.New(cfg, svc, server.WithLogger(log.Named("server"))).Run(ctx)
}
