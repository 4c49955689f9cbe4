// Package types contains the request and response shapes shared by the
// service and its transports.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/aimtune/internal/domain/model"
)

// Feedback rating labels accepted in place of a numeric delta.
const (
	RatingTooHigh   = "too-high"
	RatingTooLow    = "too-low"
	RatingJustRight = "just-right"
)

// ParseRating maps a rating label or a number in [-2, 2] to a rating delta.
// Labels are matched case-insensitively and may use spaces or underscores.
func ParseRating(s string) (int, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	switch norm {
	case RatingTooHigh:
		return model.MinRatingDelta, nil
	case RatingTooLow:
		return model.MaxRatingDelta, nil
	case RatingJustRight:
		return 0, nil
	}
	n, err := strconv.Atoi(norm)
	if err != nil || n < model.MinRatingDelta || n > model.MaxRatingDelta {
		return 0, fmt.Errorf("%w: rating %q is not too-high, too-low, just-right or -2..2", model.ErrInvalidFeedback, s)
	}
	return n, nil
}

// FeedbackInput is a feedback submission. ID is optional and makes retries
// idempotent. Rating, when set, takes precedence over RatingDelta.
type FeedbackInput struct {
	ID          string `json:"id,omitempty"`
	ResultID    string `json:"result_id"`
	Axis        string `json:"axis,omitempty"`
	RatingDelta int    `json:"rating_delta"`
	Rating      string `json:"rating,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Delta resolves the effective rating delta.
func (in FeedbackInput) Delta() (int, error) {
	if strings.TrimSpace(in.Rating) != "" {
		return ParseRating(in.Rating)
	}
	if in.RatingDelta < model.MinRatingDelta || in.RatingDelta > model.MaxRatingDelta {
		return 0, fmt.Errorf("%w: rating_delta %d outside [%d, %d]",
			model.ErrInvalidFeedback, in.RatingDelta, model.MinRatingDelta, model.MaxRatingDelta)
	}
	return in.RatingDelta, nil
}

// FeedbackOutcome reports a stored, or previously stored, feedback record.
type FeedbackOutcome struct {
	Feedback  model.FeedbackRecord `json:"feedback"`
	Duplicate bool                 `json:"duplicate"`
}

// Stats is the service status reported on /stats.
type Stats struct {
	Started         bool           `json:"started"`
	Calculations    int            `json:"calculations"`
	Feedback        int            `json:"feedback"`
	PerGame         map[string]int `json:"per_game"`
	LastCalculation *time.Time     `json:"last_calculation,omitempty"`
	Games           int            `json:"games"`
	QueueLength     int            `json:"queue_length"`
	QueueCapacity   int            `json:"queue_capacity"`
	DedupeSize      int64          `json:"dedupe_size"`
}

// ResultList is a page of recent results.
type ResultList struct {
	GameID  string                    `json:"game_id,omitempty"`
	Results []model.CalculationResult `json:"results"`
	Count   int                       `json:"count"`
}

// History is the feedback recorded for one game.
type History struct {
	GameID  string                 `json:"game_id"`
	Records []model.FeedbackRecord `json:"records"`
	Count   int                    `json:"count"`
}
