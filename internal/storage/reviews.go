package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

type WeeklyReviewStore struct {
	db *sql.DB
}

const reviewColumns = `id, user_id, week_start, total_tracked_minutes, priority_aligned_minutes, wasted_minutes,
	wins, challenges, improvements, overall_score, is_completed, completed_at, created_at, updated_at`

// Create returns ports.ErrDuplicate when the week already has a review.
func (s *WeeklyReviewStore) Create(ctx context.Context, r core.WeeklyReview) (core.WeeklyReview, error) {
	wins, err := encodeList(r.Wins)
	if err != nil {
		return core.WeeklyReview{}, err
	}
	challenges, err := encodeList(r.Challenges)
	if err != nil {
		return core.WeeklyReview{}, err
	}
	improvements, err := encodeList(r.Improvements)
	if err != nil {
		return core.WeeklyReview{}, err
	}

	var completedAt sql.NullInt64
	if r.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: toMillis(*r.CompletedAt), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weekly_reviews (`+reviewColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, toMillis(r.WeekStart), r.TotalTrackedMinutes, r.PriorityAlignedMinutes, r.WastedMinutes,
		wins, challenges, improvements, nullInt(r.OverallScore), boolInt(r.IsCompleted), completedAt,
		toMillis(r.CreatedAt), toMillis(r.UpdatedAt))
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("create weekly review: %w", translate(err))
	}
	if r.Wins == nil {
		r.Wins = []string{}
	}
	if r.Challenges == nil {
		r.Challenges = []string{}
	}
	if r.Improvements == nil {
		r.Improvements = []string{}
	}
	return r, nil
}

func (s *WeeklyReviewStore) FindByID(ctx context.Context, id string) (core.WeeklyReview, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM weekly_reviews WHERE id = ?`, id)
	r, err := scanReview(row)
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("find weekly review %s: %w", id, err)
	}
	return r, nil
}

func (s *WeeklyReviewStore) FindByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (core.WeeklyReview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM weekly_reviews WHERE user_id = ? AND week_start = ?`,
		userID, toMillis(weekStart))
	r, err := scanReview(row)
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("find weekly review for week: %w", err)
	}
	return r, nil
}

func (s *WeeklyReviewStore) FindByUser(ctx context.Context, userID string, limit int) ([]core.WeeklyReview, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM weekly_reviews WHERE user_id = ? ORDER BY week_start DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weekly reviews: %w", err)
	}
	defer rows.Close()

	var out []core.WeeklyReview
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *WeeklyReviewStore) UpdateMetrics(ctx context.Context, id string, totals core.WeekTotals) (core.WeeklyReview, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE weekly_reviews SET total_tracked_minutes = ?, priority_aligned_minutes = ?, wasted_minutes = ?, updated_at = ?
		 WHERE id = ? AND is_completed = 0`,
		totals.TrackedMinutes, totals.PriorityAlignedMinutes, totals.WastedMinutes, toMillis(time.Now()), id)
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("update review metrics %s: %w", id, err)
	}
	return s.FindByID(ctx, id)
}

func (s *WeeklyReviewStore) Complete(ctx context.Context, id string, c ports.ReviewCompletion) (core.WeeklyReview, error) {
	wins, err := encodeList(c.Wins)
	if err != nil {
		return core.WeeklyReview{}, err
	}
	challenges, err := encodeList(c.Challenges)
	if err != nil {
		return core.WeeklyReview{}, err
	}
	improvements, err := encodeList(c.Improvements)
	if err != nil {
		return core.WeeklyReview{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE weekly_reviews SET wins = ?, challenges = ?, improvements = ?, overall_score = ?,
			is_completed = 1, completed_at = ?, updated_at = ?
		 WHERE id = ? AND is_completed = 0`,
		wins, challenges, improvements, c.OverallScore, toMillis(c.CompletedAt), toMillis(c.CompletedAt), id)
	if err != nil {
		return core.WeeklyReview{}, fmt.Errorf("complete weekly review %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return core.WeeklyReview{}, fmt.Errorf("complete weekly review %s: %w", id, err)
	}
	return s.FindByID(ctx, id)
}

func scanReview(row scanner) (core.WeeklyReview, error) {
	var (
		r                              core.WeeklyReview
		wins, challenges, improvements string
		score, completedAt             sql.NullInt64
		completed                      int
		week, created, updated         int64
	)
	err := row.Scan(&r.ID, &r.UserID, &week, &r.TotalTrackedMinutes, &r.PriorityAlignedMinutes, &r.WastedMinutes,
		&wins, &challenges, &improvements, &score, &completed, &completedAt, &created, &updated)
	if err != nil {
		return core.WeeklyReview{}, translate(err)
	}

	if r.Wins, err = decodeList(wins); err != nil {
		return core.WeeklyReview{}, err
	}
	if r.Challenges, err = decodeList(challenges); err != nil {
		return core.WeeklyReview{}, err
	}
	if r.Improvements, err = decodeList(improvements); err != nil {
		return core.WeeklyReview{}, err
	}

	r.OverallScore = intPtr(score)
	r.IsCompleted = completed == 1
	if completedAt.Valid {
		t := fromMillis(completedAt.Int64)
		r.CompletedAt = &t
	}
	r.WeekStart = fromMillis(week)
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = fromMillis(updated)
	return r, nil
}
