// Package server runs the HTTP surface and its background loops.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/okian/aimtune/internal/adapters/http/api"
	"github.com/okian/aimtune/internal/adapters/http/site"
	"github.com/okian/aimtune/internal/adapters/http/swagger"
	service "github.com/okian/aimtune/internal/app"
	"github.com/okian/aimtune/internal/config"
	"github.com/okian/aimtune/pkg/logger"
	"github.com/okian/aimtune/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

// Server serves the engine over HTTP.
type Server struct {
	cfg      *config.Config
	svc      *service.Service
	logger   logger.Logger
	listener net.Listener
	interval time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener serves on ln instead of listening on the configured address.
func WithListener(ln net.Listener) Option {
	return func(s *Server) {
		s.listener = ln
	}
}

// WithMetricsInterval sets how often system gauges are refreshed.
func WithMetricsInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a server for svc. The server starts and stops svc in Run.
func New(cfg *config.Config, svc *service.Service, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		logger:   logger.Get().Named("server"),
		interval: systemMetricsInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServiceOptions maps cfg onto service options.
func ServiceOptions(cfg *config.Config, l logger.Logger) []service.Option {
	return []service.Option{
		service.WithLogger(l),
		service.WithQueueSize(cfg.WriterQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithHistoryLimit(cfg.HistoryLimit),
		service.WithSentimentMinSamples(cfg.SentimentMinSamples),
		service.WithFeedbackHalfLife(cfg.FeedbackHalfLife()),
		service.WithConfidenceBaseline(cfg.ConfidenceBaseline),
		service.WithGamesFile(cfg.GamesFile),
		service.WithStoreDriver(cfg.StoreDriver, cfg.DataDir),
		service.WithMaxResults(cfg.MaxResults),
		service.WithReferenceDevice(cfg.ReferenceDPI, cfg.ReferenceDiagonalInches),
	}
}

// Handler builds the full route tree. API routes register first because
// they install middleware on the router.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	api.NewServer(s.svc, s.svc).Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// Run starts the service, serves HTTP and refreshes system metrics until ctx
// is done or one of them fails. The service is stopped before Run returns.
func (s *Server) Run(ctx context.Context) error {
	if err := s.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer s.svc.Stop()

	ln := s.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
	}

	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(gCtx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info(gCtx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.runSystemMetrics(gCtx)
		return nil
	})

	err := g.Wait()
	s.logger.Info(ctx, "server stopped")
	return err
}

func (s *Server) runSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
