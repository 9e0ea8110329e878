package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"timebudget/internal/core"
)

const maxBodyBytes = 1 << 20

const dateOnly = "2006-01-02"

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected so typos surface as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("request body is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return core.NewValidationError("request body is not valid JSON")
		case errors.As(err, &typeErr):
			return core.NewValidationError(fmt.Sprintf("field %q has the wrong type", typeErr.Field))
		case errors.As(err, &maxErr):
			return core.NewValidationError("request body is too large")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return core.NewValidationError(strings.TrimPrefix(err.Error(), "json: "))
		default:
			return core.NewValidationError(err.Error())
		}
	}
	if dec.More() {
		return core.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps and bare dates, which are read in local time.
func parseTime(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnly, v, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, core.NewValidationError(fmt.Sprintf("%s must be an ISO 8601 date", field))
}

func parseTimePtr(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := parseTime(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryTime(q url.Values, key string) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(key, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, core.NewValidationError(fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return n, nil
}

func queryBool(q url.Values, key string, def bool) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, core.NewValidationError(fmt.Sprintf("%s must be true or false", key))
	}
	return b, nil
}
