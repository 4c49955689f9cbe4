// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Calculate(ctx context.Context, req model.CalculationRequest) (model.CalculationResult, error)
	SubmitFeedback(ctx context.Context, in types.FeedbackInput) (types.FeedbackOutcome, error)

	Games() []model.GameProfile
	Game(id string) (model.GameProfile, error)

	History(ctx context.Context, gameID string) (types.History, error)
	Results(ctx context.Context, gameID string, limit int) (types.ResultList, error)
	Result(ctx context.Context, id string) (model.CalculationResult, error)
	Clear(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	opsHandler       *OpsHandler
	calculateHandler *CalculateHandler
	feedbackHandler  *FeedbackHandler
	gamesHandler     *GamesHandler
	historyHandler   *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		opsHandler:       NewOpsHandler(statsProvider),
		calculateHandler: NewCalculateHandler(deps),
		feedbackHandler:  NewFeedbackHandler(deps),
		gamesHandler:     NewGamesHandler(deps),
		historyHandler:   NewHistoryHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.Recoverer)

	r.With(instrument("healthz")).Get("/healthz", s.opsHandler.HandleHealth)
	r.With(instrument("stats")).Get("/stats", s.opsHandler.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		r.With(instrument("calculate")).Post("/calculate", s.calculateHandler.HandleCalculate)
		r.With(instrument("feedback")).Post("/feedback", s.feedbackHandler.HandleFeedback)
		r.With(instrument("games")).Get("/games", s.gamesHandler.HandleList)
		r.With(instrument("game")).Get("/games/{id}", s.gamesHandler.HandleGet)
		r.With(instrument("history")).Get("/history/{game}", s.historyHandler.HandleHistory)
		r.With(instrument("clear")).Delete("/history", s.historyHandler.HandleClear)
		r.With(instrument("results")).Get("/results", s.historyHandler.HandleResults)
		r.With(instrument("result")).Get("/results/{id}", s.historyHandler.HandleResult)
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type clearResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps err onto a status and code and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
