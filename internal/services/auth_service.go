package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

const (
	minPasswordLength = 8
	minNameLength     = 2
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  core.User
	Token string
}

type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenGenerator
	now    func() time.Time
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := core.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case !core.IsValidEmail(email):
		return AuthResult{}, core.NewValidationError("email is not valid")
	case len(in.Password) < minPasswordLength:
		return AuthResult{}, core.NewValidationError(fmt.Sprintf("password must have at least %d characters", minPasswordLength))
	case len([]rune(name)) < minNameLength:
		return AuthResult{}, core.NewValidationError(fmt.Sprintf("name must have at least %d characters", minNameLength))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, core.ErrEmailExists
	} else if !errors.Is(err, ports.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now()
	user, err := s.users.Create(ctx, core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, ports.ErrDuplicate) {
		return AuthResult{}, core.ErrEmailExists
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return s.issue(user)
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, ports.ErrNotFound) {
		return AuthResult{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user by email: %w", err)
	}
	if !s.hasher.Compare(password, user.PasswordHash) {
		slog.WarnContext(ctx, "Rejected login", "user_id", user.ID)
		return AuthResult{}, core.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (core.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return core.User{}, lookup(err, core.ErrUserNotFound, "find user")
	}
	return user, nil
}

// FindByEmail is used by admin tooling; it does not check a password.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (core.User, error) {
	user, err := s.users.FindByEmail(ctx, core.NormalizeEmail(email))
	if err != nil {
		return core.User{}, lookup(err, core.ErrUserNotFound, "find user by email")
	}
	return user, nil
}

func (s *AuthService) issue(user core.User) (AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}
