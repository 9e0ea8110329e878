package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

type EliminationInput struct {
	ActivityName     string
	Reason           *string
	RecoveredMinutes *int
}

// EliminationList is the user's eliminations plus the weekly minutes they free up.
type EliminationList struct {
	Items                 []core.Elimination
	TotalRecoveredMinutes int
}

type EliminationService struct {
	eliminations ports.EliminationRepository
	now          func() time.Time
}

func (s *EliminationService) Create(ctx context.Context, userID string, in EliminationInput) (core.Elimination, error) {
	name := strings.TrimSpace(in.ActivityName)
	if name == "" {
		return core.Elimination{}, core.NewValidationError("activity name is required")
	}
	recovered := orDefault(in.RecoveredMinutes, 0)
	if recovered < 0 {
		return core.Elimination{}, core.NewValidationError("recovered minutes must be zero or greater")
	}

	now := s.now()
	e, err := s.eliminations.Create(ctx, core.Elimination{
		ID:               uuid.NewString(),
		UserID:           userID,
		ActivityName:     name,
		Reason:           trimmedPtr(in.Reason),
		RecoveredMinutes: recovered,
		EliminatedAt:     now,
		CreatedAt:        now,
	})
	if err != nil {
		return core.Elimination{}, fmt.Errorf("create elimination: %w", err)
	}
	return e, nil
}

func (s *EliminationService) List(ctx context.Context, userID string) (EliminationList, error) {
	items, err := s.eliminations.FindByUser(ctx, userID)
	if err != nil {
		return EliminationList{}, fmt.Errorf("list eliminations: %w", err)
	}
	total, err := s.eliminations.SumRecoveredMinutes(ctx, userID)
	if err != nil {
		return EliminationList{}, fmt.Errorf("sum recovered minutes: %w", err)
	}
	if items == nil {
		items = []core.Elimination{}
	}
	return EliminationList{Items: items, TotalRecoveredMinutes: total}, nil
}
