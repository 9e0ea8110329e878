// Package worker consumes domain events and keeps open weekly reviews current.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timebudget/internal/core"
	"timebudget/internal/metrics"
)

// ReviewRefresher recomputes the cached metrics of one user's week.
type ReviewRefresher interface {
	RefreshWeek(ctx context.Context, userID string, weekStart time.Time) error
}

// ReviewWorker refreshes the open review of the week an event touched.
// Completed reviews are left alone by the refresher, so redelivered events are harmless.
type ReviewWorker struct {
	reviews ReviewRefresher
}

func NewReviewWorker(reviews ReviewRefresher) *ReviewWorker {
	return &ReviewWorker{reviews: reviews}
}

// HandleEvent processes a single event from AMQP. A returned error requeues it.
func (w *ReviewWorker) HandleEvent(ctx context.Context, e core.Event) error {
	if !e.AffectsOpenReview() {
		slog.DebugContext(ctx, "Ignoring event", "type", e.Type, "entity_id", e.EntityID)
		metrics.RecordEvent(string(e.Type), true, e.OccurredAt)
		return nil
	}
	if e.UserID == "" || e.WeekStart.IsZero() {
		// Nothing to refresh; requeueing would loop forever.
		slog.WarnContext(ctx, "Dropping event without user or week", "type", e.Type, "entity_id", e.EntityID)
		metrics.RecordEvent(string(e.Type), false, time.Time{})
		return nil
	}

	slog.InfoContext(ctx, "Refreshing weekly review",
		"type", e.Type,
		"user_id", e.UserID,
		"week_start", e.WeekStart.Format(time.DateOnly))

	if err := w.reviews.RefreshWeek(ctx, e.UserID, e.WeekStart); err != nil {
		metrics.RecordEvent(string(e.Type), false, time.Time{})
		return fmt.Errorf("refresh review for week %s: %w", e.WeekStart.Format(time.DateOnly), err)
	}
	metrics.RecordEvent(string(e.Type), true, e.OccurredAt)
	return nil
}
