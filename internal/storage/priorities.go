package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timebudget/internal/core"
)

type PriorityStore struct {
	db *sql.DB
}

const priorityColumns = `id, user_id, name, description, sort_order, allocated_minutes, is_active, created_at, updated_at`

func (s *PriorityStore) Create(ctx context.Context, p core.Priority) (core.Priority, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO priorities (`+priorityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, nullString(p.Description), p.Order, p.AllocatedMinutes,
		boolInt(p.IsActive), toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return core.Priority{}, fmt.Errorf("create priority: %w", translate(err))
	}
	return p, nil
}

func (s *PriorityStore) FindByID(ctx context.Context, id string) (core.Priority, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+priorityColumns+` FROM priorities WHERE id = ?`, id)
	p, err := scanPriority(row)
	if err != nil {
		return core.Priority{}, fmt.Errorf("find priority %s: %w", id, err)
	}
	return p, nil
}

func (s *PriorityStore) FindByUser(ctx context.Context, userID string, onlyActive bool) ([]core.Priority, error) {
	query := `SELECT ` + priorityColumns + ` FROM priorities WHERE user_id = ?`
	if onlyActive {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY is_active DESC, sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	defer rows.Close()

	var out []core.Priority
	for rows.Next() {
		p, err := scanPriority(rows)
		if err != nil {
			return nil, fmt.Errorf("scan priority: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PriorityStore) CountActive(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM priorities WHERE user_id = ? AND is_active = 1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active priorities: %w", err)
	}
	return n, nil
}

func (s *PriorityStore) Update(ctx context.Context, p core.Priority) (core.Priority, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE priorities SET name = ?, description = ?, sort_order = ?, allocated_minutes = ?,
			is_active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, nullString(p.Description), p.Order, p.AllocatedMinutes, boolInt(p.IsActive),
		toMillis(p.UpdatedAt), p.ID)
	if err != nil {
		return core.Priority{}, fmt.Errorf("update priority %s: %w", p.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return core.Priority{}, fmt.Errorf("update priority %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *PriorityStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM priorities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete priority %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("delete priority %s: %w", id, err)
	}
	return nil
}

// Reorder writes every position inside one transaction.
func (s *PriorityStore) Reorder(ctx context.Context, userID string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	for i, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE priorities SET sort_order = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			i+1, now, id, userID)
		if err != nil {
			return fmt.Errorf("reorder priority %s: %w", id, err)
		}
		if err := requireAffected(res); err != nil {
			return fmt.Errorf("reorder priority %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func scanPriority(row scanner) (core.Priority, error) {
	var (
		p                core.Priority
		desc             sql.NullString
		active           int
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &desc, &p.Order, &p.AllocatedMinutes, &active, &created, &updated)
	if err != nil {
		return core.Priority{}, translate(err)
	}
	p.Description = stringPtr(desc)
	p.IsActive = active == 1
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}
