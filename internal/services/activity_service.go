package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

type ActivityInput struct {
	Name                  string
	Description           *string
	CategoryID            string
	DurationMinutes       int
	Date                  time.Time // zero means now
	AlignedWithPriorities bool
	SatisfactionLevel     *int
}

// ActivityView is an activity joined with its category name.
type ActivityView struct {
	core.Activity
	CategoryName string
}

type ActivityService struct {
	activities ports.ActivityRepository
	categories ports.CategoryRepository
	budgets    ports.TimeBudgetRepository
	events     *eventSink
	now        func() time.Time
}

func (s *ActivityService) Create(ctx context.Context, userID string, in ActivityInput) (ActivityView, error) {
	if !core.IsValidDuration(in.DurationMinutes) {
		return ActivityView{}, core.ErrInvalidActivityDuration
	}
	if in.SatisfactionLevel != nil && !core.IsValidSatisfactionLevel(*in.SatisfactionLevel) {
		return ActivityView{}, core.NewValidationError("satisfaction level must be between 1 and 5")
	}

	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return ActivityView{}, lookup(err, core.ErrCategoryNotFound, "find category")
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	a := core.Activity{
		ID:                    uuid.NewString(),
		UserID:                userID,
		CategoryID:            category.ID,
		Name:                  strings.TrimSpace(in.Name),
		Description:           trimmedPtr(in.Description),
		DurationMinutes:       in.DurationMinutes,
		Date:                  date,
		AlignedWithPriorities: in.AlignedWithPriorities,
		SatisfactionLevel:     in.SatisfactionLevel,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := a.Validate(); err != nil {
		return ActivityView{}, err
	}
	if a.TimeBudgetID, err = s.budgetOf(ctx, userID, date); err != nil {
		return ActivityView{}, err
	}

	created, err := s.activities.Create(ctx, a)
	if err != nil {
		return ActivityView{}, fmt.Errorf("create activity: %w", err)
	}
	s.events.emit(ctx, core.NewEvent(core.EventActivityLogged, userID, created.ID, weekOf(created.Date)))
	return ActivityView{Activity: created, CategoryName: category.Name}, nil
}

// Update applies a partial change. Moving an activity to another week relinks its budget.
func (s *ActivityService) Update(ctx context.Context, userID, id string, patch ports.ActivityPatch) (ActivityView, error) {
	a, err := s.owned(ctx, userID, id)
	if err != nil {
		return ActivityView{}, err
	}
	previousWeek := weekOf(a.Date)

	if patch.DurationMinutes != nil && !core.IsValidDuration(*patch.DurationMinutes) {
		return ActivityView{}, core.ErrInvalidActivityDuration
	}
	if patch.SatisfactionLevel != nil && !core.IsValidSatisfactionLevel(*patch.SatisfactionLevel) {
		return ActivityView{}, core.NewValidationError("satisfaction level must be between 1 and 5")
	}

	categoryID := a.CategoryID
	if patch.CategoryID != nil && *patch.CategoryID != "" {
		categoryID = *patch.CategoryID
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrNotFound) && patch.CategoryID != nil:
		return ActivityView{}, core.ErrCategoryNotFound
	case errors.Is(err, ports.ErrNotFound):
		category = core.Category{ID: categoryID}
	default:
		return ActivityView{}, fmt.Errorf("find category: %w", err)
	}

	a.CategoryID = categoryID
	if patch.Name != nil {
		a.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		a.Description = trimmedPtr(patch.Description)
	}
	if patch.DurationMinutes != nil {
		a.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.AlignedWithPriorities != nil {
		a.AlignedWithPriorities = *patch.AlignedWithPriorities
	}
	if patch.SatisfactionLevel != nil {
		a.SatisfactionLevel = patch.SatisfactionLevel
	}
	if err := a.Validate(); err != nil {
		return ActivityView{}, err
	}

	week := weekOf(a.Date)
	if !week.Equal(previousWeek) {
		if a.TimeBudgetID, err = s.budgetOf(ctx, userID, a.Date); err != nil {
			return ActivityView{}, err
		}
	}
	a.UpdatedAt = s.now()

	updated, err := s.activities.Update(ctx, a)
	if err != nil {
		return ActivityView{}, lookup(err, core.ErrActivityNotFound, "update activity")
	}

	s.events.emit(ctx, core.NewEvent(core.EventActivityUpdated, userID, id, week))
	if !week.Equal(previousWeek) {
		s.events.emit(ctx, core.NewEvent(core.EventActivityUpdated, userID, id, previousWeek))
	}
	return ActivityView{Activity: updated, CategoryName: category.Name}, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, id string) error {
	a, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return lookup(err, core.ErrActivityNotFound, "delete activity")
	}
	s.events.emit(ctx, core.NewEvent(core.EventActivityDeleted, userID, id, weekOf(a.Date)))
	return nil
}

func (s *ActivityService) List(ctx context.Context, userID string, f ports.ActivityFilter) ([]ActivityView, error) {
	if f.Limit < 0 || f.Offset < 0 {
		return nil, core.NewValidationError("limit and offset must be zero or greater")
	}
	activities, err := s.activities.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	cats, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	out := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivityView{Activity: a, CategoryName: names[a.CategoryID]})
	}
	return out, nil
}

func (s *ActivityService) owned(ctx context.Context, userID, id string) (core.Activity, error) {
	a, err := s.activities.FindByID(ctx, id)
	if err != nil {
		return core.Activity{}, lookup(err, core.ErrActivityNotFound, "find activity")
	}
	if a.UserID != userID {
		return core.Activity{}, core.ErrActivityNotFound
	}
	return a, nil
}

// budgetOf returns the id of the budget covering date, or nil when none exists.
func (s *ActivityService) budgetOf(ctx context.Context, userID string, date time.Time) (*string, error) {
	b, err := s.budgets.FindByUserAndWeek(ctx, userID, weekOf(date))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find budget for activity week: %w", err)
	}
	return &b.ID, nil
}
