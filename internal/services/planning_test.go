package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebudget/internal/core"
)

func TestPriorityLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Salud", "Familia", "Carrera", "Libro"} {
		p, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	_, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: "Quinta"})
	assert.ErrorIs(t, err, core.ErrMaxPrioritiesExceeded)
	assertKind(t, err, core.KindLimitExceeded)

	_, err = f.svc.Priorities.Update(ctx, "u1", ids[1], PriorityPatch{IsActive: boolp(false)})
	require.NoError(t, err)

	fifth, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: "Quinta"})
	require.NoError(t, err)
	assert.Equal(t, 4, fifth.Order)

	active, err := f.svc.Priorities.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, active, 4)
	for i, p := range active {
		assert.Equal(t, i+1, p.Order, "active ranking stays dense")
	}

	_, err = f.svc.Priorities.Update(ctx, "u1", ids[1], PriorityPatch{IsActive: boolp(true)})
	assert.ErrorIs(t, err, core.ErrMaxPrioritiesExceeded)

	all, err := f.svc.Priorities.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestPriorityValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: "   "})
	assertKind(t, err, core.KindValidation)

	_, err = f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: "x", AllocatedMinutes: intp(-5)})
	assertKind(t, err, core.KindValidation)

	p, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: " Salud ", Description: strp("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Salud", p.Name)
	assert.Nil(t, p.Description)
	assert.Zero(t, p.AllocatedMinutes)

	_, err = f.svc.Priorities.Update(ctx, "u2", p.ID, PriorityPatch{Name: strp("mine")})
	assert.ErrorIs(t, err, core.ErrPriorityNotFound)

	assert.ErrorIs(t, f.svc.Priorities.Delete(ctx, "u2", p.ID), core.ErrPriorityNotFound)
	require.NoError(t, f.svc.Priorities.Delete(ctx, "u1", p.ID))
}

func TestPriorityReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		p, err := f.svc.Priorities.Create(ctx, "u1", PriorityInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	foreign, err := f.svc.Priorities.Create(ctx, "u2", PriorityInput{Name: "Other"})
	require.NoError(t, err)

	_, err = f.svc.Priorities.Reorder(ctx, "u1", []string{ids[2], foreign.ID, ids[0]})
	assertKind(t, err, core.KindValidation)

	list, err := f.svc.Priorities.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, ids, []string{list[0].ID, list[1].ID, list[2].ID}, "rejected reorder leaves order unchanged")

	_, err = f.svc.Priorities.Reorder(ctx, "u1", []string{"a", "b", "c", "d", "e"})
	assertKind(t, err, core.KindValidation)

	_, err = f.svc.Priorities.Update(ctx, "u1", ids[1], PriorityPatch{IsActive: boolp(false)})
	require.NoError(t, err)
	_, err = f.svc.Priorities.Reorder(ctx, "u1", []string{ids[1], ids[0]})
	assertKind(t, err, core.KindValidation)

	reordered, err := f.svc.Priorities.Reorder(ctx, "u1", []string{ids[2], ids[0]})
	require.NoError(t, err)
	require.Len(t, reordered, 2)
	assert.Equal(t, ids[2], reordered[0].ID)
	assert.Equal(t, 1, reordered[0].Order)
	assert.Equal(t, ids[0], reordered[1].ID)
	assert.Equal(t, 2, reordered[1].Order)
}

func TestCalendarOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := func(h, m int) time.Time { return time.Date(2024, 1, 1, h, m, 0, 0, time.Local) }

	first, err := f.svc.Calendar.Create(ctx, "u1", BlockInput{Title: "Focus", StartTime: at(9, 0), EndTime: at(10, 0)})
	require.NoError(t, err)
	assert.Equal(t, core.BlockPriority, first.BlockType)
	assert.Equal(t, 60, first.DurationMinutes())

	_, err = f.svc.Calendar.Create(ctx, "u1", BlockInput{Title: "Clash", StartTime: at(9, 30), EndTime: at(10, 30)})
	assert.ErrorIs(t, err, core.ErrCalendarBlockOverlap)
	assertKind(t, err, core.KindOverlap)

	second, err := f.svc.Calendar.Create(ctx, "u1", BlockInput{Title: "Next", StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err, "touching blocks are allowed")

	_, err = f.svc.Calendar.Create(ctx, "u2", BlockInput{Title: "Other user", StartTime: at(9, 30), EndTime: at(10, 30)})
	require.NoError(t, err, "overlap is checked per user")

	_, err = f.svc.Calendar.Create(ctx, "u1", BlockInput{Title: "Empty", StartTime: at(12, 0), EndTime: at(12, 0)})
	assertKind(t, err, core.KindValidation)

	_, err = f.svc.Calendar.Update(ctx, "u1", second.ID, BlockPatch{StartTime: timep(at(9, 45))})
	assert.ErrorIs(t, err, core.ErrCalendarBlockOverlap)

	moved, err := f.svc.Calendar.Update(ctx, "u1", second.ID, BlockPatch{EndTime: timep(at(11, 30))})
	require.NoError(t, err, "a block never overlaps itself")
	assert.Equal(t, 90, moved.DurationMinutes())

	rec := core.RecurDaily
	noRepeat, err := f.svc.Calendar.Create(ctx, "u1", BlockInput{
		Title: "Lunch", StartTime: at(13, 0), EndTime: at(14, 0), BlockType: core.BlockRoutine, Recurrence: &rec,
	})
	require.NoError(t, err)
	assert.Nil(t, noRepeat.Recurrence, "recurrence is dropped for one-off blocks")

	start, end := at(0, 0), at(12, 0)
	morning, err := f.svc.Calendar.List(ctx, "u1", &start, &end)
	require.NoError(t, err)
	assert.Len(t, morning, 2)

	assert.ErrorIs(t, f.svc.Calendar.Delete(ctx, "u2", first.ID), core.ErrCalendarBlockNotFound)
	require.NoError(t, f.svc.Calendar.Delete(ctx, "u1", first.ID))
}

func TestEliminations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Eliminations.Create(ctx, "u1", EliminationInput{ActivityName: "  "})
	assertKind(t, err, core.KindValidation)
	_, err = f.svc.Eliminations.Create(ctx, "u1", EliminationInput{ActivityName: "TV", RecoveredMinutes: intp(-1)})
	assertKind(t, err, core.KindValidation)

	e, err := f.svc.Eliminations.Create(ctx, "u1", EliminationInput{ActivityName: " Scrolling ", RecoveredMinutes: intp(300)})
	require.NoError(t, err)
	assert.Equal(t, "Scrolling", e.ActivityName)
	assert.True(t, e.EliminatedAt.Equal(testNow))

	_, err = f.svc.Eliminations.Create(ctx, "u1", EliminationInput{ActivityName: "Meetings"})
	require.NoError(t, err)

	list, err := f.svc.Eliminations.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 300, list.TotalRecoveredMinutes)

	empty, err := f.svc.Eliminations.List(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.TotalRecoveredMinutes)
}

func timep(t time.Time) *time.Time { return &t }
