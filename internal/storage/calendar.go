package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timebudget/internal/core"
)

type CalendarBlockStore struct {
	db *sql.DB
}

const blockColumns = `id, user_id, title, start_time, end_time, block_type, is_recurring, recurrence, created_at, updated_at`

func (s *CalendarBlockStore) Create(ctx context.Context, b core.CalendarBlock) (core.CalendarBlock, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendar_blocks (`+blockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Title, toMillis(b.StartTime), toMillis(b.EndTime), string(b.BlockType),
		boolInt(b.IsRecurring), recurrenceValue(b.Recurrence), toMillis(b.CreatedAt), toMillis(b.UpdatedAt))
	if err != nil {
		return core.CalendarBlock{}, fmt.Errorf("create calendar block: %w", translate(err))
	}
	return b, nil
}

func (s *CalendarBlockStore) FindByID(ctx context.Context, id string) (core.CalendarBlock, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM calendar_blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if err != nil {
		return core.CalendarBlock{}, fmt.Errorf("find calendar block %s: %w", id, err)
	}
	return b, nil
}

// FindByUser returns blocks starting in [start, end) when both bounds are set.
func (s *CalendarBlockStore) FindByUser(ctx context.Context, userID string, start, end *time.Time) ([]core.CalendarBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM calendar_blocks WHERE user_id = ?`
	args := []any{userID}
	if start != nil {
		query += ` AND start_time >= ?`
		args = append(args, toMillis(*start))
	}
	if end != nil {
		query += ` AND start_time < ?`
		args = append(args, toMillis(*end))
	}
	query += ` ORDER BY start_time ASC`
	return s.query(ctx, "list calendar blocks", query, args...)
}

func (s *CalendarBlockStore) FindOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) ([]core.CalendarBlock, error) {
	return s.query(ctx, "find overlapping blocks",
		`SELECT `+blockColumns+` FROM calendar_blocks
		 WHERE user_id = ? AND start_time < ? AND end_time > ? AND id <> ?
		 ORDER BY start_time ASC`,
		userID, toMillis(end), toMillis(start), excludeID)
}

func (s *CalendarBlockStore) Update(ctx context.Context, b core.CalendarBlock) (core.CalendarBlock, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE calendar_blocks SET title = ?, start_time = ?, end_time = ?, block_type = ?,
			is_recurring = ?, recurrence = ?, updated_at = ?
		 WHERE id = ?`,
		b.Title, toMillis(b.StartTime), toMillis(b.EndTime), string(b.BlockType), boolInt(b.IsRecurring),
		recurrenceValue(b.Recurrence), toMillis(b.UpdatedAt), b.ID)
	if err != nil {
		return core.CalendarBlock{}, fmt.Errorf("update calendar block %s: %w", b.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return core.CalendarBlock{}, fmt.Errorf("update calendar block %s: %w", b.ID, err)
	}
	return b, nil
}

func (s *CalendarBlockStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete calendar block %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("delete calendar block %s: %w", id, err)
	}
	return nil
}

func (s *CalendarBlockStore) query(ctx context.Context, op, query string, args ...any) ([]core.CalendarBlock, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []core.CalendarBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func recurrenceValue(r *core.Recurrence) sql.NullString {
	if r == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*r), Valid: true}
}

func scanBlock(row scanner) (core.CalendarBlock, error) {
	var (
		b                            core.CalendarBlock
		blockType                    string
		recurrence                   sql.NullString
		recurring                    int
		start, end, created, updated int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &start, &end, &blockType, &recurring, &recurrence, &created, &updated)
	if err != nil {
		return core.CalendarBlock{}, translate(err)
	}
	b.BlockType = core.BlockType(blockType)
	b.IsRecurring = recurring == 1
	if recurrence.Valid {
		r := core.Recurrence(recurrence.String)
		b.Recurrence = &r
	}
	b.StartTime = fromMillis(start)
	b.EndTime = fromMillis(end)
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	return b, nil
}
