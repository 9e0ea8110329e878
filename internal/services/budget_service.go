package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

// BudgetInput carries the optional fields of a create or update.
// Nil minutes fall back to the defaults on create and to the stored value on update.
type BudgetInput struct {
	WeekStart        *time.Time
	SleepMinutes     *int
	WorkMinutes      *int
	MealsMinutes     *int
	HygieneMinutes   *int
	TransportMinutes *int
}

type BudgetService struct {
	budgets ports.TimeBudgetRepository
	now     func() time.Time
}

// Create stores the budget of a week. A week holds at most one budget per user;
// the unique index on (user, week) settles concurrent creates.
func (s *BudgetService) Create(ctx context.Context, userID string, in BudgetInput) (core.TimeBudget, error) {
	week := weekOf(s.now())
	if in.WeekStart != nil {
		week = weekOf(*in.WeekStart)
	}

	if _, err := s.budgets.FindByUserAndWeek(ctx, userID, week); err == nil {
		return core.TimeBudget{}, core.ErrBudgetAlreadyExists
	} else if !errors.Is(err, ports.ErrNotFound) {
		return core.TimeBudget{}, fmt.Errorf("find budget for week: %w", err)
	}

	now := s.now()
	b := core.TimeBudget{
		ID:               uuid.NewString(),
		UserID:           userID,
		WeekStart:        week,
		SleepMinutes:     orDefault(in.SleepMinutes, core.DefaultSleepMinutes),
		WorkMinutes:      orDefault(in.WorkMinutes, core.DefaultWorkMinutes),
		MealsMinutes:     orDefault(in.MealsMinutes, core.DefaultMealsMinutes),
		HygieneMinutes:   orDefault(in.HygieneMinutes, core.DefaultHygieneMinutes),
		TransportMinutes: orDefault(in.TransportMinutes, core.DefaultTransportMinutes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	b.Recompute()
	if err := b.Validate(); err != nil {
		return core.TimeBudget{}, err
	}

	created, err := s.budgets.Create(ctx, b)
	if errors.Is(err, ports.ErrDuplicate) {
		return core.TimeBudget{}, core.ErrBudgetAlreadyExists
	}
	if err != nil {
		return core.TimeBudget{}, fmt.Errorf("create budget: %w", err)
	}
	slog.InfoContext(ctx, "Time budget created",
		"user_id", userID,
		"week_start", week.Format(time.DateOnly),
		"available_minutes", created.AvailableMinutes)
	return created, nil
}

// Current returns the budget of the week containing now.
func (s *BudgetService) Current(ctx context.Context, userID string) (core.TimeBudget, error) {
	b, err := s.budgets.FindByUserAndWeek(ctx, userID, weekOf(s.now()))
	if err != nil {
		return core.TimeBudget{}, lookup(err, core.ErrBudgetNotFound, "find current budget")
	}
	return b, nil
}

// Update merges the provided fields and always recomputes the available minutes.
func (s *BudgetService) Update(ctx context.Context, userID, id string, in BudgetInput) (core.TimeBudget, error) {
	b, err := s.budgets.FindByID(ctx, id)
	if err != nil {
		return core.TimeBudget{}, lookup(err, core.ErrBudgetNotFound, "find budget")
	}
	if b.UserID != userID {
		return core.TimeBudget{}, core.ErrBudgetNotFound
	}

	b.SleepMinutes = orDefault(in.SleepMinutes, b.SleepMinutes)
	b.WorkMinutes = orDefault(in.WorkMinutes, b.WorkMinutes)
	b.MealsMinutes = orDefault(in.MealsMinutes, b.MealsMinutes)
	b.HygieneMinutes = orDefault(in.HygieneMinutes, b.HygieneMinutes)
	b.TransportMinutes = orDefault(in.TransportMinutes, b.TransportMinutes)
	b.Recompute()
	if err := b.Validate(); err != nil {
		return core.TimeBudget{}, err
	}
	b.UpdatedAt = s.now()

	updated, err := s.budgets.Update(ctx, b)
	if err != nil {
		return core.TimeBudget{}, lookup(err, core.ErrBudgetNotFound, "update budget")
	}
	return updated, nil
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
