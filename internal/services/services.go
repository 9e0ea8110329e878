// Package services holds the use cases of the time budget application.
// Each service composes repository calls with the arithmetic in internal/core
// and returns *core.Error values for expected failures.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store     ports.Store
	Hasher    ports.PasswordHasher
	Tokens    ports.TokenGenerator
	Publisher ports.EventPublisher // optional

	CategoryCacheTTL time.Duration
	Now              func() time.Time
}

// Services groups the use cases exposed to transports.
type Services struct {
	Auth         *AuthService
	Categories   *CategoryService
	Budgets      *BudgetService
	Activities   *ActivityService
	Priorities   *PriorityService
	Calendar     *CalendarService
	Eliminations *EliminationService
	Reviews      *ReviewService
	Analytics    *AnalyticsService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	events := &eventSink{publisher: d.Publisher}
	return &Services{
		Auth:         &AuthService{users: d.Store.Users, hasher: d.Hasher, tokens: d.Tokens, now: d.Now},
		Categories:   NewCategoryService(d.Store.Categories, d.CategoryCacheTTL),
		Budgets:      &BudgetService{budgets: d.Store.Budgets, now: d.Now},
		Activities:   &ActivityService{activities: d.Store.Activities, categories: d.Store.Categories, budgets: d.Store.Budgets, events: events, now: d.Now},
		Priorities:   &PriorityService{priorities: d.Store.Priorities, now: d.Now},
		Calendar:     &CalendarService{blocks: d.Store.Blocks, now: d.Now},
		Eliminations: &EliminationService{eliminations: d.Store.Eliminations, now: d.Now},
		Reviews:      &ReviewService{reviews: d.Store.Reviews, activities: d.Store.Activities, events: events, now: d.Now},
		Analytics:    &AnalyticsService{budgets: d.Store.Budgets, activities: d.Store.Activities, categories: d.Store.Categories, reviews: d.Store.Reviews, now: d.Now},
	}
}

// eventSink publishes domain events without failing the caller.
type eventSink struct {
	publisher ports.EventPublisher
}

func (s *eventSink) emit(ctx context.Context, e core.Event) {
	if s == nil || s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping event", "type", e.Type)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		// The write already succeeded; consumers recompute on next read.
		slog.ErrorContext(ctx, "Failed to publish event",
			"type", e.Type,
			"entity_id", e.EntityID,
			"error", err)
	}
}

// lookup maps a repository miss to the domain error notFound.
func lookup(err error, notFound *core.Error, op string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// weekOf returns the local Monday that keys per-week rows.
func weekOf(t time.Time) time.Time {
	return core.WeekStart(t.Local())
}
