package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 52
)

type CompleteReviewInput struct {
	Wins         []string
	Challenges   []string
	Improvements []string
	OverallScore int
}

// ReviewService manages the weekly review projection. An open review is
// recomputed from the week's activities whenever it is read; a completed one
// is frozen.
type ReviewService struct {
	reviews    ports.WeeklyReviewRepository
	activities ports.ActivityRepository
	events     *eventSink
	now        func() time.Time
}

// Current returns the review of the week containing now, creating it on first access.
func (s *ReviewService) Current(ctx context.Context, userID string) (core.WeeklyReview, error) {
	return s.ForWeek(ctx, userID, s.now())
}

// ForWeek returns the review of the week containing t, creating it on first access.
func (s *ReviewService) ForWeek(ctx context.Context, userID string, t time.Time) (core.WeeklyReview, error) {
	week := weekOf(t)
	r, err := s.reviews.FindByUserAndWeek(ctx, userID, week)
	if errors.Is(err, ports.ErrNotFound) {
		r, err = s.create(ctx, userID, week)
	}
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("find weekly review: %w", err)
	}
	if r.IsCompleted {
		return r, nil
	}
	return s.refresh(ctx, r)
}

// RefreshWeek recomputes the open review of a week if one exists.
// A missing review is left for the next read to create.
func (s *ReviewService) RefreshWeek(ctx context.Context, userID string, weekStart time.Time) error {
	r, err := s.reviews.FindByUserAndWeek(ctx, userID, weekOf(weekStart))
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find weekly review: %w", err)
	}
	if r.IsCompleted {
		return nil
	}
	_, err = s.refresh(ctx, r)
	return err
}

func (s *ReviewService) Complete(ctx context.Context, userID, id string, in CompleteReviewInput) (core.WeeklyReview, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return core.WeeklyReview{}, lookup(err, core.ErrReviewNotFound, "find weekly review")
	}
	if r.UserID != userID {
		return core.WeeklyReview{}, core.ErrReviewNotFound
	}
	if r.IsCompleted {
		return core.WeeklyReview{}, core.ErrReviewAlreadyCompleted
	}
	if !core.IsValidScore(in.OverallScore) {
		return core.WeeklyReview{}, core.NewValidationError(
			fmt.Sprintf("overall score must be between %d and %d", core.MinScore, core.MaxScore))
	}

	// Freeze the metrics as they stand at completion time.
	if _, err := s.refresh(ctx, r); err != nil {
		return core.WeeklyReview{}, err
	}

	completed, err := s.reviews.Complete(ctx, id, ports.ReviewCompletion{
		Wins:         cleanList(in.Wins),
		Challenges:   cleanList(in.Challenges),
		Improvements: cleanList(in.Improvements),
		OverallScore: in.OverallScore,
		CompletedAt:  s.now(),
	})
	if errors.Is(err, ports.ErrNotFound) {
		// Lost a race with another completion.
		return core.WeeklyReview{}, core.ErrReviewAlreadyCompleted
	}
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("complete weekly review: %w", err)
	}

	slog.InfoContext(ctx, "Weekly review completed",
		"user_id", userID,
		"review_id", id,
		"score", in.OverallScore)
	s.events.emit(ctx, core.NewEvent(core.EventReviewCompleted, userID, id, completed.WeekStart))
	return completed, nil
}

// History returns the most recent reviews, newest first.
func (s *ReviewService) History(ctx context.Context, userID string, limit int) ([]core.WeeklyReview, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	rs, err := s.reviews.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weekly reviews: %w", err)
	}
	if rs == nil {
		rs = []core.WeeklyReview{}
	}
	return rs, nil
}

func (s *ReviewService) create(ctx context.Context, userID string, week time.Time) (core.WeeklyReview, error) {
	now := s.now()
	r, err := s.reviews.Create(ctx, core.WeeklyReview{
		ID:        uuid.NewString(),
		UserID:    userID,
		WeekStart: week,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, ports.ErrDuplicate) {
		// Another request created it first.
		return s.reviews.FindByUserAndWeek(ctx, userID, week)
	}
	return r, err
}

func (s *ReviewService) refresh(ctx context.Context, r core.WeeklyReview) (core.WeeklyReview, error) {
	activities, err := s.activities.FindByDateRange(ctx, r.UserID, r.WeekStart, r.WeekEnd())
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("load week activities: %w", err)
	}
	updated, err := s.reviews.UpdateMetrics(ctx, r.ID, core.SumActivities(activities))
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("update review metrics: %w", err)
	}
	return updated, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
