package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

type BlockInput struct {
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	BlockType   core.BlockType // empty means PRIORITY
	IsRecurring bool
	Recurrence  *core.Recurrence
}

type BlockPatch struct {
	Title       *string
	StartTime   *time.Time
	EndTime     *time.Time
	BlockType   *core.BlockType
	IsRecurring *bool
	Recurrence  *core.Recurrence
}

// CalendarService rejects any block that overlaps another block of the same user.
type CalendarService struct {
	blocks ports.CalendarBlockRepository
	now    func() time.Time
}

func (s *CalendarService) Create(ctx context.Context, userID string, in BlockInput) (core.CalendarBlock, error) {
	now := s.now()
	b := core.CalendarBlock{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		BlockType:   in.BlockType,
		IsRecurring: in.IsRecurring,
		Recurrence:  in.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.BlockType == "" {
		b.BlockType = core.BlockPriority
	}
	if !b.IsRecurring {
		b.Recurrence = nil
	}
	if err := b.Validate(); err != nil {
		return core.CalendarBlock{}, err
	}
	if err := s.checkOverlap(ctx, b); err != nil {
		return core.CalendarBlock{}, err
	}

	created, err := s.blocks.Create(ctx, b)
	if err != nil {
		return core.CalendarBlock{}, fmt.Errorf("create calendar block: %w", err)
	}
	return created, nil
}

// List returns blocks starting in [start, end), ordered by start time.
func (s *CalendarService) List(ctx context.Context, userID string, start, end *time.Time) ([]core.CalendarBlock, error) {
	if start != nil && end != nil && !end.After(*start) {
		return nil, core.NewValidationError("endDate must be after startDate")
	}
	bs, err := s.blocks.FindByUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list calendar blocks: %w", err)
	}
	return bs, nil
}

func (s *CalendarService) Update(ctx context.Context, userID, id string, patch BlockPatch) (core.CalendarBlock, error) {
	b, err := s.owned(ctx, userID, id)
	if err != nil {
		return core.CalendarBlock{}, err
	}
	if patch.Title != nil {
		b.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.StartTime != nil {
		b.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		b.EndTime = *patch.EndTime
	}
	if patch.BlockType != nil {
		b.BlockType = *patch.BlockType
	}
	if patch.IsRecurring != nil {
		b.IsRecurring = *patch.IsRecurring
	}
	if patch.Recurrence != nil {
		b.Recurrence = patch.Recurrence
	}
	if !b.IsRecurring {
		b.Recurrence = nil
	}
	if err := b.Validate(); err != nil {
		return core.CalendarBlock{}, err
	}
	if err := s.checkOverlap(ctx, b); err != nil {
		return core.CalendarBlock{}, err
	}
	b.UpdatedAt = s.now()

	updated, err := s.blocks.Update(ctx, b)
	if err != nil {
		return core.CalendarBlock{}, lookup(err, core.ErrCalendarBlockNotFound, "update calendar block")
	}
	return updated, nil
}

func (s *CalendarService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.blocks.Delete(ctx, id); err != nil {
		return lookup(err, core.ErrCalendarBlockNotFound, "delete calendar block")
	}
	return nil
}

// checkOverlap uses half-open intervals: touching blocks are allowed.
func (s *CalendarService) checkOverlap(ctx context.Context, b core.CalendarBlock) error {
	hits, err := s.blocks.FindOverlapping(ctx, b.UserID, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return fmt.Errorf("find overlapping blocks: %w", err)
	}
	if len(hits) > 0 {
		slog.InfoContext(ctx, "Rejected overlapping calendar block",
			"user_id", b.UserID,
			"conflicts", len(hits),
			"conflict_id", hits[0].ID)
		return core.ErrCalendarBlockOverlap
	}
	return nil
}

func (s *CalendarService) owned(ctx context.Context, userID, id string) (core.CalendarBlock, error) {
	b, err := s.blocks.FindByID(ctx, id)
	if err != nil {
		return core.CalendarBlock{}, lookup(err, core.ErrCalendarBlockNotFound, "find calendar block")
	}
	if b.UserID != userID {
		return core.CalendarBlock{}, core.ErrCalendarBlockNotFound
	}
	return b, nil
}
