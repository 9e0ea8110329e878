package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebudget/internal/core"
)

func TestJSONResponse_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(map[string]int{"n": 1}).Header("X-Test", "yes").Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Test"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())
}

func TestJSONResponse_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent().Write(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", core.NewValidationError("bad"), http.StatusBadRequest, core.CodeValidation},
		{"limit", core.ErrMaxPrioritiesExceeded, http.StatusBadRequest, core.CodeMaxPrioritiesExceeded},
		{"overlap", core.ErrCalendarBlockOverlap, http.StatusBadRequest, core.CodeCalendarBlockOverlap},
		{"already completed", core.ErrReviewAlreadyCompleted, http.StatusBadRequest, core.CodeReviewAlreadyCompleted},
		{"not found", core.ErrActivityNotFound, http.StatusNotFound, core.CodeActivityNotFound},
		{"conflict", core.ErrEmailExists, http.StatusConflict, core.CodeEmailExists},
		{"credentials", core.ErrInvalidCredentials, http.StatusUnauthorized, core.CodeInvalidCredentials},
		{"token", core.ErrInvalidToken, http.StatusUnauthorized, core.CodeInvalidToken},
		{"wrapped", fmt.Errorf("update: %w", core.ErrBudgetNotFound), http.StatusNotFound, core.CodeBudgetNotFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, core.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errorFrom(tt.err).Write(rec)
			assert.Equal(t, tt.status, rec.Code)

			var body envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestErrorFrom_HidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	errorFrom(errors.New("sql: connection refused on 10.0.0.4")).Write(rec)
	assert.NotContains(t, rec.Body.String(), "10.0.0.4")
}
