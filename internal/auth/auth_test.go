package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "0123456789abcdef0123456789abcdef", Issuer: "timebudget", ExpiresIn: time.Hour}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens(testConfig)
	signed, err := tokens.Generate("user-1")
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens(testConfig)
	signed, err := tokens.Generate("user-1")
	require.NoError(t, err)

	_, err = Parse("", testConfig)
	assert.ErrorIs(t, err, ErrMissingToken)

	other := testConfig
	other.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = Parse(signed, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := testConfig
	wrongIssuer.Issuer = "someone-else"
	_, err = Parse(signed, wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens(testConfig)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate("user-1")
	require.NoError(t, err)
	_, err = Parse(old, testConfig)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(4)
	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, h.Compare("password123", hash))
	assert.False(t, h.Compare("password124", hash))
	assert.False(t, h.Compare("password123", "not-a-hash"))

	assert.Equal(t, 10, NewBcrypt(99).Cost)
}

func TestMiddleware(t *testing.T) {
	signed, err := NewTokens(testConfig).Generate("user-42")
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := NewMiddleware(testConfig, func(r *http.Request) bool { return r.URL.Path == "/open" }, nil)
	h := mw.Wrap(next)

	cases := []struct {
		name   string
		path   string
		header string
		status int
		user   string
	}{
		{"valid token", "/api/x", "Bearer " + signed, http.StatusNoContent, "user-42"},
		{"missing header", "/api/x", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/x", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "/api/x", "Bearer nope", http.StatusUnauthorized, ""},
		{"skipped path", "/open", "", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.user, seen)
		})
	}
}
