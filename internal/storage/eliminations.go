package storage

import (
	"context"
	"database/sql"
	"fmt"

	"timebudget/internal/core"
)

type EliminationStore struct {
	db *sql.DB
}

const eliminationColumns = `id, user_id, activity_name, reason, recovered_minutes, eliminated_at, created_at`

func (s *EliminationStore) Create(ctx context.Context, e core.Elimination) (core.Elimination, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eliminations (`+eliminationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ActivityName, nullString(e.Reason), e.RecoveredMinutes,
		toMillis(e.EliminatedAt), toMillis(e.CreatedAt))
	if err != nil {
		return core.Elimination{}, fmt.Errorf("create elimination: %w", translate(err))
	}
	return e, nil
}

func (s *EliminationStore) FindByUser(ctx context.Context, userID string) ([]core.Elimination, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eliminationColumns+` FROM eliminations WHERE user_id = ? ORDER BY eliminated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list eliminations: %w", err)
	}
	defer rows.Close()

	var out []core.Elimination
	for rows.Next() {
		var (
			e                   core.Elimination
			reason              sql.NullString
			eliminated, created int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActivityName, &reason, &e.RecoveredMinutes, &eliminated, &created); err != nil {
			return nil, fmt.Errorf("scan elimination: %w", err)
		}
		e.Reason = stringPtr(reason)
		e.EliminatedAt = fromMillis(eliminated)
		e.CreatedAt = fromMillis(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *EliminationStore) SumRecoveredMinutes(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(recovered_minutes), 0) FROM eliminations WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum recovered minutes: %w", err)
	}
	return total, nil
}
