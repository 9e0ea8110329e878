package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

func newTestStore(t *testing.T) (ports.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "timebudget.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo.Store(), dbPath
}

func seedUser(t *testing.T, st ports.Store) core.User {
	t.Helper()
	now := time.Now()
	u, err := st.Users.Create(context.Background(), core.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         "Tester",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return u
}

func seedCategories(t *testing.T, st ports.Store) []core.Category {
	t.Helper()
	ctx := context.Background()
	_, err := st.Categories.Seed(ctx, core.DefaultCategories)
	require.NoError(t, err)
	cats, err := st.Categories.FindAll(ctx)
	require.NoError(t, err)
	return cats
}

func TestMigrationsAreIdempotent(t *testing.T) {
	_, dbPath := newTestStore(t)

	require.NoError(t, RunMigrations(dbPath))
	version, dirty, err := MigrationVersion(dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestUserStore(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)

	got, err := st.Users.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := u
	dup.ID = uuid.NewString()
	_, err = st.Users.Create(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	_, err = st.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCategorySeedNeverOverwrites(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	n, err := st.Categories.Seed(ctx, core.DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, len(core.DefaultCategories), n)

	changed := []core.Category{{Name: "Trabajo", Color: "#000000"}, {Name: "Lectura", Color: "#111111"}}
	n, err = st.Categories.Seed(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cats, err := st.Categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories)+1)
	for _, c := range cats {
		if c.Name == "Trabajo" {
			assert.Equal(t, "#3B82F6", c.Color)
			assert.True(t, c.IsDefault)
		}
	}
}

func TestTimeBudgetUniquePerWeek(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	week := core.WeekStart(time.Now())

	b := core.TimeBudget{ID: uuid.NewString(), UserID: u.ID, WeekStart: week, SleepMinutes: 3360}
	b.Recompute()
	_, err := st.Budgets.Create(ctx, b)
	require.NoError(t, err)

	b.ID = uuid.NewString()
	_, err = st.Budgets.Create(ctx, b)
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	b.WeekStart = week.AddDate(0, 0, 7)
	_, err = st.Budgets.Create(ctx, b)
	require.NoError(t, err)

	got, err := st.Budgets.FindByUserAndWeek(ctx, u.ID, week)
	require.NoError(t, err)
	assert.True(t, got.WeekStart.Equal(week))
	assert.Equal(t, core.MinutesPerWeek-3360, got.AvailableMinutes)
}

func TestActivityQueries(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	cats := seedCategories(t, st)
	week := core.WeekStart(time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local))
	now := time.Now()

	add := func(cat string, minutes int, at time.Time, aligned bool) {
		_, err := st.Activities.Create(ctx, core.Activity{
			ID: uuid.NewString(), UserID: u.ID, CategoryID: cat, Name: "a",
			DurationMinutes: minutes, Date: at, AlignedWithPriorities: aligned,
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}
	add(cats[0].ID, 60, week, true)
	add(cats[0].ID, 30, week.Add(24*time.Hour), false)
	add(cats[1].ID, 45, week.Add(48*time.Hour), false)
	add(cats[1].ID, 90, core.WeekEnd(week), false) // next week, excluded from [start, end)

	inWeek, err := st.Activities.FindByDateRange(ctx, u.ID, week, core.WeekEnd(week))
	require.NoError(t, err)
	assert.Len(t, inWeek, 3)

	end := core.WeekEnd(week)
	listed, err := st.Activities.List(ctx, u.ID, ports.ActivityFilter{StartDate: &week, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, listed, 4, "list bounds are inclusive")
	assert.True(t, listed[0].Date.Equal(end), "list is ordered by date desc")

	page, err := st.Activities.List(ctx, u.ID, ports.ActivityFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	byCat, err := st.Activities.List(ctx, u.ID, ports.ActivityFilter{CategoryID: cats[1].ID})
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	totals, err := st.Activities.SumDurationByCategory(ctx, u.ID, week, core.WeekEnd(week))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 90, totals[0].TotalMinutes)
	assert.Equal(t, cats[0].Name, totals[0].CategoryName)
	assert.Equal(t, 45, totals[1].TotalMinutes)
}

func TestPriorityReorderIsAtomic(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	now := time.Now()

	var ids []string
	for i := 1; i <= 3; i++ {
		p, err := st.Priorities.Create(ctx, core.Priority{
			ID: uuid.NewString(), UserID: u.ID, Name: "p", Order: i, IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	count, err := st.Priorities.CountActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	err = st.Priorities.Reorder(ctx, u.ID, []string{ids[2], "missing", ids[0]})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	ps, err := st.Priorities.FindByUser(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, ids[0], ps[0].ID, "failed reorder must not change order")

	require.NoError(t, st.Priorities.Reorder(ctx, u.ID, []string{ids[2], ids[0], ids[1]}))
	ps, err = st.Priorities.FindByUser(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{ps[0].ID, ps[1].ID, ps[2].ID})
	assert.Equal(t, 1, ps[0].Order)
}

func TestCalendarOverlapQuery(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	at := func(h, m int) time.Time { return time.Date(2024, 1, 1, h, m, 0, 0, time.Local) }
	now := time.Now()

	b, err := st.Blocks.Create(ctx, core.CalendarBlock{
		ID: uuid.NewString(), UserID: u.ID, Title: "Focus", StartTime: at(9, 0), EndTime: at(10, 0),
		BlockType: core.BlockPriority, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	hits, err := st.Blocks.FindOverlapping(ctx, u.ID, at(9, 30), at(10, 30), "")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = st.Blocks.FindOverlapping(ctx, u.ID, at(10, 0), at(11, 0), "")
	require.NoError(t, err)
	assert.Empty(t, hits, "touching blocks do not overlap")

	hits, err = st.Blocks.FindOverlapping(ctx, u.ID, at(9, 30), at(10, 30), b.ID)
	require.NoError(t, err)
	assert.Empty(t, hits, "excluded block is skipped")
}

func TestWeeklyReviewLifecycle(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	now := time.Now()
	week := core.WeekStart(now)

	r, err := st.Reviews.Create(ctx, core.WeeklyReview{
		ID: uuid.NewString(), UserID: u.ID, WeekStart: week, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	_, err = st.Reviews.Create(ctx, core.WeeklyReview{
		ID: uuid.NewString(), UserID: u.ID, WeekStart: week, CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	r, err = st.Reviews.UpdateMetrics(ctx, r.ID, core.WeekTotals{TrackedMinutes: 100, PriorityAlignedMinutes: 40})
	require.NoError(t, err)
	assert.Equal(t, 100, r.TotalTrackedMinutes)

	r, err = st.Reviews.Complete(ctx, r.ID, ports.ReviewCompletion{
		Wins: []string{"shipped"}, OverallScore: 80, CompletedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, r.IsCompleted)
	assert.Equal(t, []string{"shipped"}, r.Wins)
	assert.Equal(t, []string{}, r.Challenges)
	require.NotNil(t, r.OverallScore)
	assert.Equal(t, 80, *r.OverallScore)

	_, err = st.Reviews.Complete(ctx, r.ID, ports.ReviewCompletion{OverallScore: 10, CompletedAt: now})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	r, err = st.Reviews.UpdateMetrics(ctx, r.ID, core.WeekTotals{TrackedMinutes: 999})
	require.NoError(t, err)
	assert.Equal(t, 100, r.TotalTrackedMinutes, "completed reviews are frozen")

	list, err := st.Reviews.FindByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEliminationTotals(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, st)
	now := time.Now()

	total, err := st.Eliminations.SumRecoveredMinutes(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	for _, m := range []int{30, 90} {
		_, err := st.Eliminations.Create(ctx, core.Elimination{
			ID: uuid.NewString(), UserID: u.ID, ActivityName: "scrolling", RecoveredMinutes: m,
			EliminatedAt: now, CreatedAt: now,
		})
		require.NoError(t, err)
	}

	total, err = st.Eliminations.SumRecoveredMinutes(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, total)
}
