// Package ports declares the contracts the use cases consume.
// Concrete stores live in internal/storage (SQLite) and internal/storage/memory.
package ports

import (
	"context"
	"errors"
	"time"

	"timebudget/internal/core"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

type (
	ActivityFilter struct {
		StartDate  *time.Time
		EndDate    *time.Time
		CategoryID string
		Limit      int
		Offset     int
	}

	// ActivityPatch carries the optional fields of a partial update.
	ActivityPatch struct {
		Name                  *string
		Description           *string
		CategoryID            *string
		DurationMinutes       *int
		Date                  *time.Time
		AlignedWithPriorities *bool
		SatisfactionLevel     *int
	}

	ReviewCompletion struct {
		Wins         []string
		Challenges   []string
		Improvements []string
		OverallScore int
		CompletedAt  time.Time
	}
)

type (
	UserRepository interface {
		Create(ctx context.Context, u core.User) (core.User, error)
		FindByID(ctx context.Context, id string) (core.User, error)
		FindByEmail(ctx context.Context, email string) (core.User, error)
	}

	CategoryRepository interface {
		FindAll(ctx context.Context) ([]core.Category, error)
		FindByID(ctx context.Context, id string) (core.Category, error)
		// Seed inserts categories whose name is absent and never overwrites.
		Seed(ctx context.Context, categories []core.Category) (inserted int, err error)
	}

	TimeBudgetRepository interface {
		Create(ctx context.Context, b core.TimeBudget) (core.TimeBudget, error)
		FindByID(ctx context.Context, id string) (core.TimeBudget, error)
		FindByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (core.TimeBudget, error)
		Update(ctx context.Context, b core.TimeBudget) (core.TimeBudget, error)
	}

	ActivityRepository interface {
		Create(ctx context.Context, a core.Activity) (core.Activity, error)
		FindByID(ctx context.Context, id string) (core.Activity, error)
		Update(ctx context.Context, a core.Activity) (core.Activity, error)
		Delete(ctx context.Context, id string) error
		// List orders by date descending; both date bounds are inclusive.
		List(ctx context.Context, userID string, f ActivityFilter) ([]core.Activity, error)
		// FindByDateRange returns activities in [start, end).
		FindByDateRange(ctx context.Context, userID string, start, end time.Time) ([]core.Activity, error)
		SumDurationByCategory(ctx context.Context, userID string, start, end time.Time) ([]core.CategoryTotal, error)
	}

	PriorityRepository interface {
		Create(ctx context.Context, p core.Priority) (core.Priority, error)
		FindByID(ctx context.Context, id string) (core.Priority, error)
		FindByUser(ctx context.Context, userID string, onlyActive bool) ([]core.Priority, error)
		CountActive(ctx context.Context, userID string) (int, error)
		Update(ctx context.Context, p core.Priority) (core.Priority, error)
		Delete(ctx context.Context, id string) error
		// Reorder sets order = index+1 for every id, all or nothing.
		Reorder(ctx context.Context, userID string, ids []string) error
	}

	CalendarBlockRepository interface {
		Create(ctx context.Context, b core.CalendarBlock) (core.CalendarBlock, error)
		FindByID(ctx context.Context, id string) (core.CalendarBlock, error)
		FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]core.CalendarBlock, error)
		// FindOverlapping returns blocks with start < end AND end > start, skipping excludeID.
		FindOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) ([]core.CalendarBlock, error)
		Update(ctx context.Context, b core.CalendarBlock) (core.CalendarBlock, error)
		Delete(ctx context.Context, id string) error
	}

	EliminationRepository interface {
		Create(ctx context.Context, e core.Elimination) (core.Elimination, error)
		FindByUser(ctx context.Context, userID string) ([]core.Elimination, error)
		SumRecoveredMinutes(ctx context.Context, userID string) (int, error)
	}

	WeeklyReviewRepository interface {
		Create(ctx context.Context, r core.WeeklyReview) (core.WeeklyReview, error)
		FindByID(ctx context.Context, id string) (core.WeeklyReview, error)
		FindByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (core.WeeklyReview, error)
		// FindByUser orders by week start descending.
		FindByUser(ctx context.Context, userID string, limit int) ([]core.WeeklyReview, error)
		// UpdateMetrics only touches open reviews; completed ones stay frozen.
		UpdateMetrics(ctx context.Context, id string, totals core.WeekTotals) (core.WeeklyReview, error)
		// Complete returns ErrNotFound when no open review matches id.
		Complete(ctx context.Context, id string, c ReviewCompletion) (core.WeeklyReview, error)
	}
)

type (
	PasswordHasher interface {
		Hash(plain string) (string, error)
		Compare(plain, hash string) bool
	}

	TokenGenerator interface {
		Generate(userID string) (string, error)
	}

	EventPublisher interface {
		Publish(ctx context.Context, e core.Event) error
	}
)

// Store groups every repository of one backend.
type Store struct {
	Users        UserRepository
	Categories   CategoryRepository
	Budgets      TimeBudgetRepository
	Activities   ActivityRepository
	Priorities   PriorityRepository
	Blocks       CalendarBlockRepository
	Eliminations EliminationRepository
	Reviews      WeeklyReviewRepository
}
