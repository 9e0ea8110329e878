package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

type ActivityStore struct {
	db *sql.DB
}

const activityColumns = `id, user_id, category_id, time_budget_id, name, description, duration_minutes,
	date, aligned_with_priorities, satisfaction_level, created_at, updated_at`

func (s *ActivityStore) Create(ctx context.Context, a core.Activity) (core.Activity, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.CategoryID, nullString(a.TimeBudgetID), a.Name, nullString(a.Description),
		a.DurationMinutes, toMillis(a.Date), boolInt(a.AlignedWithPriorities), nullInt(a.SatisfactionLevel),
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
	if err != nil {
		return core.Activity{}, fmt.Errorf("create activity: %w", translate(err))
	}
	return a, nil
}

func (s *ActivityStore) FindByID(ctx context.Context, id string) (core.Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		return core.Activity{}, fmt.Errorf("find activity %s: %w", id, err)
	}
	return a, nil
}

func (s *ActivityStore) Update(ctx context.Context, a core.Activity) (core.Activity, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET category_id = ?, time_budget_id = ?, name = ?, description = ?,
			duration_minutes = ?, date = ?, aligned_with_priorities = ?, satisfaction_level = ?, updated_at = ?
		 WHERE id = ?`,
		a.CategoryID, nullString(a.TimeBudgetID), a.Name, nullString(a.Description), a.DurationMinutes,
		toMillis(a.Date), boolInt(a.AlignedWithPriorities), nullInt(a.SatisfactionLevel), toMillis(a.UpdatedAt), a.ID)
	if err != nil {
		return core.Activity{}, fmt.Errorf("update activity %s: %w", a.ID, translate(err))
	}
	if err := requireAffected(res); err != nil {
		return core.Activity{}, fmt.Errorf("update activity %s: %w", a.ID, err)
	}
	return a, nil
}

func (s *ActivityStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return nil
}

func (s *ActivityStore) List(ctx context.Context, userID string, f ports.ActivityFilter) ([]core.Activity, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if f.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, toMillis(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, toMillis(*f.EndDate))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC`
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, f.Offset)
	}

	return s.query(ctx, "list activities", query, args...)
}

func (s *ActivityStore) FindByDateRange(ctx context.Context, userID string, start, end time.Time) ([]core.Activity, error) {
	return s.query(ctx, "find activities by range",
		`SELECT `+activityColumns+` FROM activities
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date ASC`,
		userID, toMillis(start), toMillis(end))
}

func (s *ActivityStore) SumDurationByCategory(ctx context.Context, userID string, start, end time.Time) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.category_id, COALESCE(c.name, ?), SUM(a.duration_minutes) AS total
		 FROM activities a
		 LEFT JOIN categories c ON c.id = a.category_id
		 WHERE a.user_id = ? AND a.date >= ? AND a.date < ?
		 GROUP BY a.category_id
		 ORDER BY total DESC`,
		core.UnknownCategoryName, userID, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("sum activities by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var t core.CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.TotalMinutes); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *ActivityStore) query(ctx context.Context, op, query string, args ...any) ([]core.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanActivity(row scanner) (core.Activity, error) {
	var (
		a                      core.Activity
		budgetID, desc         sql.NullString
		satisfaction           sql.NullInt64
		aligned                int
		date, created, updated int64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.CategoryID, &budgetID, &a.Name, &desc, &a.DurationMinutes,
		&date, &aligned, &satisfaction, &created, &updated)
	if err != nil {
		return core.Activity{}, translate(err)
	}
	a.TimeBudgetID = stringPtr(budgetID)
	a.Description = stringPtr(desc)
	a.SatisfactionLevel = intPtr(satisfaction)
	a.AlignedWithPriorities = aligned == 1
	a.Date = fromMillis(date)
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}
