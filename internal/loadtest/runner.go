package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/pkg/logger"
)

type gamesResponse struct {
	Games []model.GameProfile `json:"games"`
	Count int                 `json:"count"`
}

// job is one planned calculation.
type job struct {
	req      model.CalculationRequest
	valid    bool
	feedback string // rating, empty when no feedback is sent
}

// Runner executes a load test against one server.
type Runner struct {
	cfg    Config
	client *httpClient
	logger logger.Logger

	mu     sync.Mutex
	report Report
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		client: newHTTPClient(cfg.BaseURL, cfg.Timeout),
		logger: logger.Get().Named("loadtest"),
	}
}

// Run executes the complete load test. It returns ErrVerification with the
// report when any answer broke an invariant.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if err := r.cfg.validate(); err != nil {
		return Report{}, err
	}
	start := time.Now()

	r.logger.Info(ctx, "starting aimtune load test",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("calculations", r.cfg.Calculations),
		logger.Int("workers", r.cfg.Workers),
		logger.Float64("feedbackRatio", r.cfg.FeedbackRatio))

	if _, err := r.client.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	var games gamesResponse
	if _, err := r.client.do(ctx, http.MethodGet, "/v1/games", nil, &games); err != nil {
		return Report{}, fmt.Errorf("game listing failed: %w", err)
	}
	if len(games.Games) == 0 {
		return Report{}, errors.New("server lists no games")
	}
	byID := make(map[string]model.GameProfile, len(games.Games))
	for _, g := range games.Games {
		byID[g.GameID] = g
	}

	jobs := r.plan(games.Games)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r.execute(gCtx, byID[j.req.GameID], j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("load test interrupted: %w", err)
	}

	r.mu.Lock()
	report := r.report
	r.mu.Unlock()
	report.Duration = time.Since(start)

	r.logger.Info(ctx, "final statistics",
		logger.Int("calculations", report.Calculations),
		logger.Int("calculationFailed", report.CalculationFailed),
		logger.Int("rejected", report.Rejected),
		logger.Int("feedback", report.Feedback),
		logger.Int("feedbackDuplicate", report.FeedbackDuplicate),
		logger.Int("feedbackFailed", report.FeedbackFailed),
		logger.Int("violations", len(report.Violations)),
		logger.String("duration", report.Duration.String()),
		logger.Float64("calculationsPerSecond", report.PerSecond()))

	if len(report.Violations) > 0 {
		return report, fmt.Errorf("%w: %d violations", ErrVerification, len(report.Violations))
	}
	return report, nil
}

// plan generates every job up front so a seed always yields the same run.
func (r *Runner) plan(games []model.GameProfile) []job {
	gen := NewGenerator(r.cfg.Seed, games)
	jobs := make([]job, r.cfg.Calculations)
	for i := range jobs {
		req, valid := gen.Request()
		jobs[i] = job{req: req, valid: valid}
		if valid && gen.Pick(r.cfg.FeedbackRatio) {
			jobs[i].feedback = gen.Rating()
		}
	}
	return jobs
}

func (r *Runner) execute(ctx context.Context, game model.GameProfile, j job) {
	var res model.CalculationResult
	status, err := r.client.do(ctx, http.MethodPost, "/v1/calculate", j.req, &res)

	switch {
	case !j.valid && status == http.StatusBadRequest:
		r.record(func(rep *Report) { rep.Rejected++ })
		return
	case !j.valid && err == nil:
		r.violation(fmt.Sprintf("invalid request for %s was accepted as %s", j.req.GameID, res.ID))
		return
	case err != nil:
		r.record(func(rep *Report) { rep.CalculationFailed++ })
		if status == http.StatusBadRequest || status == http.StatusNotFound {
			r.violation(fmt.Sprintf("valid request for %s rejected: %v", j.req.GameID, err))
		}
		return
	}

	r.record(func(rep *Report) { rep.Calculations++ })
	for _, v := range verifyResult(game, j.req, res) {
		r.violation(v)
	}

	if j.feedback == "" {
		return
	}
	in := types.FeedbackInput{ResultID: res.ID, Axis: string(model.AxisGeneral), Rating: j.feedback, Note: "loadtest"}
	var out types.FeedbackOutcome
	status, err = r.client.do(ctx, http.MethodPost, "/v1/feedback", in, &out)
	switch {
	case err != nil:
		r.record(func(rep *Report) { rep.FeedbackFailed++ })
	case status == http.StatusOK && out.Duplicate:
		r.record(func(rep *Report) { rep.FeedbackDuplicate++ })
	default:
		r.record(func(rep *Report) { rep.Feedback++ })
	}
}

func (r *Runner) record(update func(*Report)) {
	r.mu.Lock()
	update(&r.report)
	r.mu.Unlock()
}

func (r *Runner) violation(msg string) {
	if r.cfg.Verbose {
		r.logger.Warn(context.Background(), "violation", logger.String("detail", msg))
	}
	r.record(func(rep *Report) { rep.Violations = append(rep.Violations, msg) })
}
