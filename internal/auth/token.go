// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the signing parameters shared by the issuer and verifier.
type Config struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// Claims is the normalized payload of a verified token.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parsing and validation failures.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Tokens signs HS256 tokens carrying the user id.
type Tokens struct {
	cfg Config
	now func() time.Time
}

func NewTokens(cfg Config) *Tokens {
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 7 * 24 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}
}

// Generate returns a signed token for userID.
func (t *Tokens) Generate(userID string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":    userID,
		"userId": userID,
		"iss":    t.cfg.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(t.cfg.ExpiresIn).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	return Parse(token, t.cfg)
}

// Parse validates a token against cfg.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: userID, ExpiresAt: exp.Time}, nil
}
