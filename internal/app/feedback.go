package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/aimtune/internal/adapters/mq/queue"
	"github.com/okian/aimtune/internal/adapters/repository"
	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/pkg/logger"
	"github.com/okian/aimtune/pkg/metrics"
)

// feedbackNamespace derives stable feedback IDs from submission content.
var feedbackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://aimtune.dev/feedback"))

func newResultID() string {
	return uuid.NewString()
}

// feedbackKey is the idempotency key of a submission: the client ID when
// given, otherwise the submission content.
func feedbackKey(in types.FeedbackInput, axis model.Axis, delta int) string {
	if id := strings.TrimSpace(in.ID); id != "" {
		return id
	}
	return fmt.Sprintf("%s|%s|%d|%s", in.ResultID, axis, delta, strings.TrimSpace(in.Note))
}

// SubmitFeedback records a verdict on one axis of a stored result. A
// resubmission with the same key reports Duplicate instead of counting twice.
func (s *Service) SubmitFeedback(ctx context.Context, in types.FeedbackInput) (types.FeedbackOutcome, error) {
	if _, _, err := s.running(); err != nil {
		return types.FeedbackOutcome{}, err
	}

	if strings.TrimSpace(in.ResultID) == "" {
		return types.FeedbackOutcome{}, fmt.Errorf("%w: result_id is required", model.ErrInvalidFeedback)
	}
	delta, err := in.Delta()
	if err != nil {
		return types.FeedbackOutcome{}, err
	}
	axis, err := model.ParseAxis(in.Axis)
	if err != nil {
		return types.FeedbackOutcome{}, fmt.Errorf("%w: %v", model.ErrInvalidFeedback, err)
	}

	result, err := s.store.GetResult(ctx, in.ResultID)
	if errors.Is(err, repository.ErrNotFound) {
		return types.FeedbackOutcome{}, fmt.Errorf("%w: %s", model.ErrResultNotFound, in.ResultID)
	}
	if err != nil {
		return types.FeedbackOutcome{}, fmt.Errorf("load result: %w", err)
	}
	if _, ok := result.PerAxisSensitivity[axis]; !ok {
		return types.FeedbackOutcome{}, fmt.Errorf("%w: result %s has no %s axis", model.ErrInvalidFeedback, result.ID, axis)
	}

	key := feedbackKey(in, axis, delta)
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewSHA1(feedbackNamespace, []byte(key)).String()
	}
	record := model.FeedbackRecord{
		ID:          id,
		ResultID:    result.ID,
		GameID:      result.GameID,
		Axis:        axis,
		RatingDelta: delta,
		Note:        strings.TrimSpace(in.Note),
		Timestamp:   s.clock.Now(),
	}

	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordFeedbackDuplicate()
		s.logger.Debug(ctx, "duplicate feedback skipped", logger.String("feedback", id))
		return types.FeedbackOutcome{Feedback: record, Duplicate: true}, nil
	}

	j := queue.NewJob(queue.OpAppendFeedback)
	j.Feedback = record
	if err := s.submit(ctx, j); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Stored before the deduper last forgot the key.
			metrics.RecordFeedbackDuplicate()
			return types.FeedbackOutcome{Feedback: record, Duplicate: true}, nil
		}
		s.deduper.Unrecord(ctx, key)
		return types.FeedbackOutcome{}, fmt.Errorf("store feedback: %w", err)
	}

	metrics.RecordFeedback(result.GameID)
	s.logger.Info(ctx, "feedback recorded",
		logger.String("feedback", id),
		logger.String("result", result.ID),
		logger.String("game", result.GameID),
		logger.String("axis", string(axis)),
		logger.Int("delta", delta),
	)

	return types.FeedbackOutcome{Feedback: record}, nil
}
