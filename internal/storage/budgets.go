package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timebudget/internal/core"
)

type TimeBudgetStore struct {
	db *sql.DB
}

const budgetColumns = `id, user_id, week_start, sleep_minutes, work_minutes, meals_minutes,
	hygiene_minutes, transport_minutes, available_minutes, created_at, updated_at`

// Create returns ports.ErrDuplicate when the (user, week) pair already has a budget.
func (s *TimeBudgetStore) Create(ctx context.Context, b core.TimeBudget) (core.TimeBudget, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, toMillis(b.WeekStart), b.SleepMinutes, b.WorkMinutes, b.MealsMinutes,
		b.HygieneMinutes, b.TransportMinutes, b.AvailableMinutes, toMillis(b.CreatedAt), toMillis(b.UpdatedAt))
	if err != nil {
		return core.TimeBudget{}, fmt.Errorf("create time budget: %w", translate(err))
	}
	return b, nil
}

func (s *TimeBudgetStore) FindByID(ctx context.Context, id string) (core.TimeBudget, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM time_budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err != nil {
		return core.TimeBudget{}, fmt.Errorf("find time budget %s: %w", id, err)
	}
	return b, nil
}

func (s *TimeBudgetStore) FindByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (core.TimeBudget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM time_budgets WHERE user_id = ? AND week_start = ?`,
		userID, toMillis(weekStart))
	b, err := scanBudget(row)
	if err != nil {
		return core.TimeBudget{}, fmt.Errorf("find time budget for week: %w", err)
	}
	return b, nil
}

func (s *TimeBudgetStore) Update(ctx context.Context, b core.TimeBudget) (core.TimeBudget, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_budgets SET sleep_minutes = ?, work_minutes = ?, meals_minutes = ?,
			hygiene_minutes = ?, transport_minutes = ?, available_minutes = ?, updated_at = ?
		 WHERE id = ?`,
		b.SleepMinutes, b.WorkMinutes, b.MealsMinutes, b.HygieneMinutes, b.TransportMinutes,
		b.AvailableMinutes, toMillis(b.UpdatedAt), b.ID)
	if err != nil {
		return core.TimeBudget{}, fmt.Errorf("update time budget %s: %w", b.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return core.TimeBudget{}, fmt.Errorf("update time budget %s: %w", b.ID, err)
	}
	return b, nil
}

func scanBudget(row scanner) (core.TimeBudget, error) {
	var (
		b                      core.TimeBudget
		week, created, updated int64
	)
	err := row.Scan(&b.ID, &b.UserID, &week, &b.SleepMinutes, &b.WorkMinutes, &b.MealsMinutes,
		&b.HygieneMinutes, &b.TransportMinutes, &b.AvailableMinutes, &created, &updated)
	if err != nil {
		return core.TimeBudget{}, translate(err)
	}
	b.WeekStart = fromMillis(week)
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	return b, nil
}
