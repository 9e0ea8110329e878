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

type PriorityInput struct {
	Name             string
	Description      *string
	AllocatedMinutes *int
}

type PriorityPatch struct {
	Name             *string
	Description      *string
	AllocatedMinutes *int
	IsActive         *bool
}

// PriorityService keeps at most core.MaxPriorities active priorities per user,
// ranked densely from 1.
type PriorityService struct {
	priorities ports.PriorityRepository
	now        func() time.Time
}

func (s *PriorityService) Create(ctx context.Context, userID string, in PriorityInput) (core.Priority, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Priority{}, core.NewValidationError("priority name is required")
	}
	allocated := orDefault(in.AllocatedMinutes, 0)
	if allocated < 0 {
		return core.Priority{}, core.NewValidationError("allocated minutes must be zero or greater")
	}

	active, err := s.priorities.CountActive(ctx, userID)
	if err != nil {
		return core.Priority{}, fmt.Errorf("count active priorities: %w", err)
	}
	if active >= core.MaxPriorities {
		return core.Priority{}, core.ErrMaxPrioritiesExceeded
	}

	now := s.now()
	p, err := s.priorities.Create(ctx, core.Priority{
		ID:               uuid.NewString(),
		UserID:           userID,
		Name:             name,
		Description:      trimmedPtr(in.Description),
		Order:            active + 1,
		AllocatedMinutes: allocated,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return core.Priority{}, fmt.Errorf("create priority: %w", err)
	}
	return p, nil
}

// List returns active priorities by rank, or every priority when includeInactive is set.
func (s *PriorityService) List(ctx context.Context, userID string, includeInactive bool) ([]core.Priority, error) {
	ps, err := s.priorities.FindByUser(ctx, userID, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	return ps, nil
}

func (s *PriorityService) Update(ctx context.Context, userID, id string, patch PriorityPatch) (core.Priority, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return core.Priority{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return core.Priority{}, core.NewValidationError("priority name is required")
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = trimmedPtr(patch.Description)
	}
	if patch.AllocatedMinutes != nil {
		if *patch.AllocatedMinutes < 0 {
			return core.Priority{}, core.NewValidationError("allocated minutes must be zero or greater")
		}
		p.AllocatedMinutes = *patch.AllocatedMinutes
	}

	wasActive := p.IsActive
	if patch.IsActive != nil && *patch.IsActive != wasActive {
		if *patch.IsActive {
			active, err := s.priorities.CountActive(ctx, userID)
			if err != nil {
				return core.Priority{}, fmt.Errorf("count active priorities: %w", err)
			}
			if active >= core.MaxPriorities {
				return core.Priority{}, core.ErrMaxPrioritiesExceeded
			}
			p.Order = active + 1
		}
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = s.now()

	updated, err := s.priorities.Update(ctx, p)
	if err != nil {
		return core.Priority{}, lookup(err, core.ErrPriorityNotFound, "update priority")
	}
	if wasActive && !updated.IsActive {
		if err := s.compact(ctx, userID); err != nil {
			return core.Priority{}, err
		}
	}
	return updated, nil
}

// Reorder replaces the ranking of the caller's active priorities with ids, in order.
// The whole list is validated before any write and persisted in one transaction.
func (s *PriorityService) Reorder(ctx context.Context, userID string, ids []string) ([]core.Priority, error) {
	if len(ids) == 0 {
		return nil, core.NewValidationError("priority ids are required")
	}
	if len(ids) > core.MaxPriorities {
		return nil, core.NewValidationError(fmt.Sprintf("at most %d priorities can be ordered", core.MaxPriorities))
	}

	active, err := s.priorities.FindByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list active priorities: %w", err)
	}
	owned := make(map[string]bool, len(active))
	for _, p := range active {
		owned[p.ID] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !owned[id] {
			return nil, core.NewValidationError("priority " + id + " is not an active priority of the user")
		}
		if seen[id] {
			return nil, core.NewValidationError("priority " + id + " is listed more than once")
		}
		seen[id] = true
	}

	if err := s.priorities.Reorder(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("reorder priorities: %w", err)
	}
	return s.List(ctx, userID, false)
}

func (s *PriorityService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.priorities.Delete(ctx, id); err != nil {
		return lookup(err, core.ErrPriorityNotFound, "delete priority")
	}
	if p.IsActive {
		return s.compact(ctx, userID)
	}
	return nil
}

// compact closes the gap left by a priority that stopped being active.
func (s *PriorityService) compact(ctx context.Context, userID string) error {
	active, err := s.priorities.FindByUser(ctx, userID, true)
	if err != nil {
		return fmt.Errorf("list active priorities: %w", err)
	}
	if len(active) == 0 {
		return nil
	}
	ids := make([]string, len(active))
	for i, p := range active {
		ids[i] = p.ID
	}
	if err := s.priorities.Reorder(ctx, userID, ids); err != nil {
		return fmt.Errorf("compact priority order: %w", err)
	}
	return nil
}

func (s *PriorityService) owned(ctx context.Context, userID, id string) (core.Priority, error) {
	p, err := s.priorities.FindByID(ctx, id)
	if err != nil {
		return core.Priority{}, lookup(err, core.ErrPriorityNotFound, "find priority")
	}
	if p.UserID != userID {
		return core.Priority{}, core.ErrPriorityNotFound
	}
	return p, nil
}
