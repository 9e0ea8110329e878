package storage

import (
	"context"
	"database/sql"
	"fmt"

	"timebudget/internal/core"
)

type UserStore struct {
	db *sql.DB
}

const userColumns = `id, email, password_hash, name, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, u core.User) (core.User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", translate(err))
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (core.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (core.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func scanUser(row scanner) (core.User, error) {
	var (
		u                core.User
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created, &updated); err != nil {
		return core.User{}, translate(err)
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}
