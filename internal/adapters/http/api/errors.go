package api

import (
	"errors"
	"net/http"

	service "github.com/okian/aimtune/internal/app"
	"github.com/okian/aimtune/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// classify maps a domain or service error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrInvalidDeviceProfile):
		return http.StatusBadRequest, "invalid_device_profile"
	case errors.Is(err, model.ErrInvalidPlayerStyle):
		return http.StatusBadRequest, "invalid_player_style"
	case errors.Is(err, model.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.Is(err, model.ErrInvalidFeedback):
		return http.StatusBadRequest, "invalid_feedback"
	case errors.Is(err, model.ErrUnknownGame):
		return http.StatusNotFound, "unknown_game"
	case errors.Is(err, model.ErrResultNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
