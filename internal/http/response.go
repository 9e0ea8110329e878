package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"timebudget/internal/core"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSONResponse builds the {success, data | error} envelope every API route returns.
type JSONResponse struct {
	status  int
	data    any
	err     *errorBody
	headers map[string]string
}

func NewJSONResponse() *JSONResponse {
	return &JSONResponse{status: http.StatusOK, headers: make(map[string]string)}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.status = code
	return b
}

func (b *JSONResponse) Data(v any) *JSONResponse {
	b.data = v
	return b
}

func (b *JSONResponse) Error(code, message string) *JSONResponse {
	b.err = &errorBody{Code: code, Message: message}
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Write sends the response. 204 responses carry no body.
func (b *JSONResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.status == http.StatusNoContent {
		w.WriteHeader(b.status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	body := envelope{Success: b.err == nil, Data: b.data, Error: b.err}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func OK(data any) *JSONResponse {
	return NewJSONResponse().Data(data)
}

func Created(data any) *JSONResponse {
	return NewJSONResponse().Status(http.StatusCreated).Data(data)
}

func NoContent() *JSONResponse {
	return NewJSONResponse().Status(http.StatusNoContent)
}

func ErrorResponse(status int, code, message string) *JSONResponse {
	return NewJSONResponse().Status(status).Error(code, message)
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation, core.KindLimitExceeded, core.KindOverlap, core.KindAlreadyCompleted:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindAlreadyExists:
		return http.StatusConflict
	case core.KindCredentials, core.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorFrom renders err. Anything that is not a domain error becomes a
// generic 500 so internals never leak to clients.
func errorFrom(err error) *JSONResponse {
	de, ok := core.AsError(err)
	if !ok || de.Kind == core.KindInternal {
		return ErrorResponse(http.StatusInternalServerError, core.CodeInternal, "internal server error")
	}
	return ErrorResponse(statusFor(de.Kind), de.Code, de.Message)
}
