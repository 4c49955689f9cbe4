// Package service runs the sensitivity engine end to end: it composes
// results from the domain components, routes every store write through a
// single writer, and folds recorded feedback back into later results.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/aimtune/internal/adapters/community"
	"github.com/okian/aimtune/internal/adapters/mq/queue"
	"github.com/okian/aimtune/internal/adapters/mq/worker"
	"github.com/okian/aimtune/internal/adapters/repository"
	"github.com/okian/aimtune/internal/domain/calibration"
	"github.com/okian/aimtune/internal/domain/dedupe"
	"github.com/okian/aimtune/internal/domain/device"
	"github.com/okian/aimtune/internal/domain/games"
	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/scoring"
	"github.com/okian/aimtune/internal/domain/sentiment"
	"github.com/okian/aimtune/internal/domain/style"
	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/pkg/logger"
	"github.com/okian/aimtune/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultDedupeSize   = 50000
	defaultHistoryLimit = 20
	shutdownTimeout     = 5 * time.Second
)

// SentimentSource supplies the community signal for a game and mode.
type SentimentSource interface {
	Signal(ctx context.Context, gameID, mode string) (model.SentimentSignal, error)
}

// Service implements the dependencies of the HTTP API, the MCP tools and the CLI.
type Service struct {
	mu sync.RWMutex

	// Domain components
	table      *games.Table
	normalizer *device.Normalizer
	weighter   *style.Weighter
	adjuster   *sentiment.Adjuster
	calibrator *calibration.Calibrator
	composer   *scoring.Composer
	sentiment  SentimentSource

	// Storage pipeline
	store   repository.Store
	deduper dedupe.Deduper
	jobs    *queue.InMemoryQueue
	writer  *worker.Writer
	cancel  context.CancelFunc

	// Configuration
	clock              clockwork.Clock
	queueSize          int
	dedupeSize         int
	historyLimit       int
	minSamples         int
	halfLife           time.Duration
	confidenceBaseline float64
	gamesFile          string
	storeDriver        string
	dataDir            string
	maxResults         int
	referenceDPI       float64
	referenceDiagonal  float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the store writer queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many feedback keys are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistoryLimit sets the default number of results listed.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithSentimentMinSamples sets the sample threshold below which sentiment is ignored.
func WithSentimentMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithFeedbackHalfLife sets the age at which a feedback record counts half.
func WithFeedbackHalfLife(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.halfLife = d
		}
	}
}

// WithConfidenceBaseline sets the confidence of a result with no signal and no history.
func WithConfidenceBaseline(baseline float64) Option {
	return func(s *Service) {
		if baseline > 0 && baseline <= 1 {
			s.confidenceBaseline = baseline
		}
	}
}

// WithGamesFile replaces the built-in game table with a YAML file loaded at start.
func WithGamesFile(path string) Option {
	return func(s *Service) {
		s.gamesFile = path
	}
}

// WithGameTable sets the game table directly.
func WithGameTable(t *games.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithStoreDriver selects the store opened at start when no store is set.
func WithStoreDriver(driver, dataDir string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.dataDir = dataDir
	}
}

// WithMaxResults caps the results a memory store keeps. Zero keeps all.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxResults = n
		}
	}
}

// WithReferenceDevice sets the phone devices are normalized against.
func WithReferenceDevice(dpi, diagonalInches float64) Option {
	return func(s *Service) {
		s.referenceDPI = dpi
		s.referenceDiagonal = diagonalInches
	}
}

// WithStore sets the store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSentimentSource sets where community sentiment comes from.
func WithSentimentSource(src SentimentSource) Option {
	return func(s *Service) {
		if src != nil {
			s.sentiment = src
		}
	}
}

// WithClock sets the clock used for timestamps and feedback decay.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:              clockwork.NewRealClock(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		historyLimit:       defaultHistoryLimit,
		minSamples:         sentiment.DefaultMinSamples,
		halfLife:           calibration.DefaultHalfLife,
		confidenceBaseline: scoring.DefaultConfidenceBaseline,
		storeDriver:        repository.DriverMemory,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.normalizer = device.NewNormalizer(device.WithReferenceDevice(s.referenceDPI, s.referenceDiagonal))
	s.weighter = style.NewWeighter()
	s.adjuster = sentiment.NewAdjuster(sentiment.WithMinSamples(s.minSamples))
	s.calibrator = calibration.NewCalibrator(
		calibration.WithClock(s.clock),
		calibration.WithHalfLife(s.halfLife),
	)
	s.composer = scoring.NewComposer(scoring.WithConfidenceBaseline(s.confidenceBaseline))

	return s
}

// Start loads the game table, opens the store and starts the store writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting sensitivity service...")

	if err := s.loadTable(); err != nil {
		return err
	}
	if s.sentiment == nil {
		feed, err := community.Default()
		if err != nil {
			return fmt.Errorf("load community feed: %w", err)
		}
		s.sentiment = feed
	}
	if s.store == nil {
		store, err := repository.Open(s.storeDriver, s.dataDir, repository.WithMaxResults(s.maxResults))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.writer = worker.NewWriter(s.jobs, s.store,
		worker.WithName(s.storeDriver),
		worker.WithLogger(s.logger.Named("writer")),
	)

	// The writer outlives the start context; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.writer.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "sensitivity service started",
		logger.Int("games", s.table.Len()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sentimentMinSamples", s.adjuster.MinSamples()),
		logger.String("feedbackHalfLife", s.calibrator.HalfLife().String()),
	)

	return nil
}

func (s *Service) loadTable() error {
	switch {
	case s.gamesFile != "":
		t, err := games.Load(s.gamesFile)
		if err != nil {
			return err
		}
		s.table = t
	case s.table == nil:
		t, err := games.Default()
		if err != nil {
			return err
		}
		s.table = t
	}
	return nil
}

// Stop drains pending writes and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping sensitivity service...")

	if err := s.writer.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "store writer did not drain", logger.Error(err))
	}
	s.cancel()

	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "sensitivity service stopped")
}

// running returns the storage pipeline, or ErrStopped.
func (s *Service) running() (*queue.InMemoryQueue, *worker.Writer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrStopped
	}
	return s.jobs, s.writer, nil
}

// submit hands a job to the writer and waits for its outcome.
func (s *Service) submit(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	jobs, writer, err := s.running()
	if err != nil {
		return err
	}

	if err := jobs.Enqueue(ctx, j); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			return ErrBackpressure
		case errors.Is(err, queue.ErrClosed):
			return ErrStopped
		default:
			return err
		}
	}

	select {
	case err := <-j.Reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-writer.Done():
		// The writer may have replied just before it exited.
		select {
		case err := <-j.Reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// Calculate composes a sensitivity result for req and stores it. A failed
// store write is logged and counted; the result is still returned.
func (s *Service) Calculate(ctx context.Context, req model.CalculationRequest) (model.CalculationResult, error) {
	start := time.Now()

	if _, _, err := s.running(); err != nil {
		return model.CalculationResult{}, err
	}

	game, err := s.table.CoefficientsFor(req.GameID)
	if err != nil {
		metrics.RecordCalculationError("unknown_game")
		return model.CalculationResult{}, err
	}
	mode, err := game.ResolveMode(req.Mode)
	if err != nil {
		metrics.RecordCalculationError("unknown_mode")
		return model.CalculationResult{}, err
	}
	factors, err := s.normalizer.Normalize(req.Device)
	if err != nil {
		metrics.RecordCalculationError("invalid_device")
		return model.CalculationResult{}, err
	}
	weights, err := s.weighter.Weight(req.Style)
	if err != nil {
		metrics.RecordCalculationError("invalid_style")
		return model.CalculationResult{}, err
	}

	multiplier := s.sentimentFor(ctx, game.GameID, mode)

	now := s.clock.Now()
	bias := s.biasFor(ctx, game.GameID, now)

	result, err := s.composer.Compose(factors, weights, game, multiplier, bias)
	if err != nil {
		metrics.RecordCalculationError("invalid_game_profile")
		return model.CalculationResult{}, err
	}
	result.ID = newResultID()
	result.GameID = game.GameID
	result.Mode = mode
	result.Device = req.Device
	result.Style = req.Style
	result.CreatedAt = now

	j := queue.NewJob(queue.OpAppendResult)
	j.Result = result
	if err := s.submit(ctx, j); err != nil {
		metrics.RecordStoreError(string(queue.OpAppendResult))
		s.logger.Warn(ctx, "result not stored",
			logger.String("result", result.ID),
			logger.Error(err),
		)
	}

	metrics.RecordCalculation(game.GameID)
	metrics.ObserveConfidence(result.Confidence)
	metrics.RecordCalculationLatency(float64(time.Since(start).Milliseconds()))

	s.logger.Debug(ctx, "calculated sensitivity",
		logger.String("result", result.ID),
		logger.String("game", game.GameID),
		logger.String("mode", mode),
		logger.Float64("confidence", result.Confidence),
		logger.Float64("sentiment", multiplier.Value),
		logger.Float64("historyWeight", bias.HistoryWeight),
	)

	return result, nil
}

// sentimentFor falls back to neutral when the source fails.
func (s *Service) sentimentFor(ctx context.Context, gameID, mode string) model.SentimentMultiplier {
	signal, err := s.sentiment.Signal(ctx, gameID, mode)
	if err != nil {
		metrics.RecordErrorByComponent("sentiment", "source")
		s.logger.Warn(ctx, "sentiment source failed, using neutral multiplier",
			logger.String("game", gameID),
			logger.Error(err),
		)
		metrics.RecordSentimentSignal(false)
		return model.NeutralSentiment()
	}
	m := s.adjuster.Adjust(signal)
	metrics.RecordSentimentSignal(m.Applied)
	return m
}

// biasFor falls back to no bias when history cannot be read.
func (s *Service) biasFor(ctx context.Context, gameID string, now time.Time) model.CalibrationBias {
	history, err := s.store.ReadHistory(ctx, gameID)
	if err != nil {
		metrics.RecordStoreError("read_history")
		s.logger.Warn(ctx, "feedback history unavailable, using neutral bias",
			logger.String("game", gameID),
			logger.Error(err),
		)
		return model.NeutralBias()
	}
	return s.calibrator.BiasAt(history, gameID, now)
}

// Games returns the game table in its published order.
func (s *Service) Games() []model.GameProfile {
	if s.table == nil {
		return nil
	}
	return s.table.List()
}

// Game returns one profile by id, name or alias.
func (s *Service) Game(id string) (model.GameProfile, error) {
	if s.table == nil {
		return model.GameProfile{}, ErrStopped
	}
	return s.table.CoefficientsFor(id)
}

// History returns the feedback recorded for a game, oldest first.
func (s *Service) History(ctx context.Context, gameID string) (types.History, error) {
	if _, _, err := s.running(); err != nil {
		return types.History{}, err
	}
	game, err := s.table.CoefficientsFor(gameID)
	if err != nil {
		return types.History{}, err
	}
	records, err := s.store.ReadHistory(ctx, game.GameID)
	if err != nil {
		return types.History{}, fmt.Errorf("read history: %w", err)
	}
	if records == nil {
		records = []model.FeedbackRecord{}
	}
	return types.History{GameID: game.GameID, Records: records, Count: len(records)}, nil
}

// Results lists recent results, newest first. An empty gameID lists every
// game. A non-positive limit uses the configured default.
func (s *Service) Results(ctx context.Context, gameID string, limit int) (types.ResultList, error) {
	if _, _, err := s.running(); err != nil {
		return types.ResultList{}, err
	}
	if gameID != "" {
		game, err := s.table.CoefficientsFor(gameID)
		if err != nil {
			return types.ResultList{}, err
		}
		gameID = game.GameID
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	results, err := s.store.ListResults(ctx, gameID, limit)
	if err != nil {
		return types.ResultList{}, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.CalculationResult{}
	}
	return types.ResultList{GameID: gameID, Results: results, Count: len(results)}, nil
}

// Result returns one stored result.
func (s *Service) Result(ctx context.Context, id string) (model.CalculationResult, error) {
	if _, _, err := s.running(); err != nil {
		return model.CalculationResult{}, err
	}
	r, err := s.store.GetResult(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.CalculationResult{}, fmt.Errorf("%w: %s", model.ErrResultNotFound, id)
	}
	return r, err
}

// Clear removes every stored result and feedback record and forgets seen
// feedback keys.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.submit(ctx, queue.NewJob(queue.OpClear)); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.deduper.Reset(ctx)
	s.logger.Info(ctx, "store cleared")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:       s.started,
		PerGame:       map[string]int{},
		QueueCapacity: s.queueSize,
	}
	if s.table != nil {
		stats.Games = s.table.Len()
	}
	if !s.started {
		return stats, nil
	}

	st, err := s.store.Stats(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("store stats: %w", err)
	}
	stats.Calculations = st.Calculations
	stats.Feedback = st.Feedback
	if st.PerGame != nil {
		stats.PerGame = st.PerGame
	}
	if !st.LastCalculation.IsZero() {
		last := st.LastCalculation
		stats.LastCalculation = &last
	}
	stats.QueueLength = s.jobs.Len(ctx)
	stats.DedupeSize = s.deduper.Size()

	return stats, nil
}
