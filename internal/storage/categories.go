package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
)

type CategoryStore struct {
	db *sql.DB
}

const categoryColumns = `id, name, description, color, icon, is_default, created_at`

func (s *CategoryStore) FindAll(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CategoryStore) FindByID(ctx context.Context, id string) (core.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %s: %w", id, err)
	}
	return c, nil
}

// Seed relies on the UNIQUE name constraint: existing rows are left untouched.
func (s *CategoryStore) Seed(ctx context.Context, categories []core.Category) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	inserted := 0
	for _, c := range categories {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			id, c.Name, c.Description, c.Color, c.Icon, boolInt(c.IsDefault), now)
		if err != nil {
			return 0, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}

func scanCategory(row scanner) (core.Category, error) {
	var (
		c         core.Category
		isDefault int
		created   int64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &isDefault, &created); err != nil {
		return core.Category{}, translate(err)
	}
	c.IsDefault = isDefault == 1
	c.CreatedAt = fromMillis(created)
	return c, nil
}
