package core

import (
	"errors"
	"fmt"
)

// Kind classifies expected domain failures.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAlreadyExists
	KindAlreadyCompleted
	KindOverlap
	KindLimitExceeded
	KindCredentials
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindAlreadyCompleted:
		return "already_completed"
	case KindOverlap:
		return "overlap"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindCredentials:
		return "credentials"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Symbolic codes exposed to clients.
const (
	CodeInvalidCredentials      = "AUTH_INVALID_CREDENTIALS"
	CodeEmailExists             = "AUTH_EMAIL_EXISTS"
	CodeUserNotFound            = "AUTH_USER_NOT_FOUND"
	CodeInvalidToken            = "AUTH_INVALID_TOKEN"
	CodeBudgetNotFound          = "BUDGET_NOT_FOUND"
	CodeBudgetAlreadyExists     = "BUDGET_ALREADY_EXISTS"
	CodeActivityNotFound        = "ACTIVITY_NOT_FOUND"
	CodeInvalidActivityDuration = "ACTIVITY_INVALID_DURATION"
	CodeCategoryNotFound        = "CATEGORY_NOT_FOUND"
	CodePriorityNotFound        = "PRIORITY_NOT_FOUND"
	CodeMaxPrioritiesExceeded   = "PRIORITY_MAX_EXCEEDED"
	CodeCalendarBlockNotFound   = "CALENDAR_BLOCK_NOT_FOUND"
	CodeCalendarBlockOverlap    = "CALENDAR_BLOCK_OVERLAP"
	CodeReviewNotFound          = "WEEKLY_REVIEW_NOT_FOUND"
	CodeReviewAlreadyCompleted  = "WEEKLY_REVIEW_ALREADY_COMPLETED"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInternal                = "INTERNAL_SERVER_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
)

// Error is an expected domain failure with a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so sentinels compare equal to wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrInvalidCredentials      = newError(KindCredentials, CodeInvalidCredentials, "invalid email or password")
	ErrEmailExists             = newError(KindAlreadyExists, CodeEmailExists, "email is already registered")
	ErrUserNotFound            = newError(KindNotFound, CodeUserNotFound, "user not found")
	ErrInvalidToken            = newError(KindUnauthorized, CodeInvalidToken, "invalid or expired token")
	ErrUnauthorized            = newError(KindUnauthorized, CodeUnauthorized, "authentication required")
	ErrBudgetNotFound          = newError(KindNotFound, CodeBudgetNotFound, "time budget not found")
	ErrBudgetAlreadyExists     = newError(KindAlreadyExists, CodeBudgetAlreadyExists, "a time budget already exists for this week")
	ErrActivityNotFound        = newError(KindNotFound, CodeActivityNotFound, "activity not found")
	ErrInvalidActivityDuration = newError(KindValidation, CodeInvalidActivityDuration, "duration must be greater than zero")
	ErrCategoryNotFound        = newError(KindNotFound, CodeCategoryNotFound, "category not found")
	ErrPriorityNotFound        = newError(KindNotFound, CodePriorityNotFound, "priority not found")
	ErrMaxPrioritiesExceeded   = newError(KindLimitExceeded, CodeMaxPrioritiesExceeded, fmt.Sprintf("at most %d active priorities are allowed", MaxPriorities))
	ErrCalendarBlockNotFound   = newError(KindNotFound, CodeCalendarBlockNotFound, "calendar block not found")
	ErrCalendarBlockOverlap    = newError(KindOverlap, CodeCalendarBlockOverlap, "calendar block overlaps an existing block")
	ErrReviewNotFound          = newError(KindNotFound, CodeReviewNotFound, "weekly review not found")
	ErrReviewAlreadyCompleted  = newError(KindAlreadyCompleted, CodeReviewAlreadyCompleted, "weekly review is already completed")
)

// NewValidationError builds a VALIDATION_ERROR with a specific message.
func NewValidationError(msg string) *Error {
	return newError(KindValidation, CodeValidation, msg)
}

// KindOf returns the domain kind of err, or KindInternal for anything else.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError extracts the domain error from err.
func AsError(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}
