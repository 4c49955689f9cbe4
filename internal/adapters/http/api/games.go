package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/aimtune/internal/domain/model"
)

// GamesDependencies defines the interface for game table reads.
type GamesDependencies interface {
	Games() []model.GameProfile
	Game(id string) (model.GameProfile, error)
}

// GamesHandler serves the game coefficient table.
type GamesHandler struct {
	deps GamesDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

type gamesResponse struct {
	Games []model.GameProfile `json:"games"`
	Count int                 `json:"count"`
}

// HandleList handles GET /v1/games requests.
func (h *GamesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Games()
	if list == nil {
		list = []model.GameProfile{}
	}
	writeJSON(w, http.StatusOK, gamesResponse{Games: list, Count: len(list)})
}

// HandleGet handles GET /v1/games/{id} requests.
func (h *GamesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	game, err := h.deps.Game(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}
