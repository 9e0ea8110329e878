package core

import (
	"net/mail"
	"strings"
	"time"
)

func IsValidDuration(minutes int) bool {
	return minutes > 0
}

func IsValidSatisfactionLevel(level int) bool {
	return level >= MinSatisfaction && level <= MaxSatisfaction
}

// IsValidTimeRange requires end strictly after start.
func IsValidTimeRange(start, end time.Time) bool {
	return end.After(start)
}

// BlocksOverlap uses half-open intervals: touching endpoints do not overlap.
func BlocksOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// IsValidScore checks the 0-100 overall score of a weekly review.
func IsValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// Validate checks the five base fields and the derived available minutes.
func (b TimeBudget) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"sleepMinutes", b.SleepMinutes},
		{"workMinutes", b.WorkMinutes},
		{"mealsMinutes", b.MealsMinutes},
		{"hygieneMinutes", b.HygieneMinutes},
		{"transportMinutes", b.TransportMinutes},
	} {
		if f.value < 0 {
			return NewValidationError(f.name + " must be zero or greater")
		}
	}
	if b.AvailableMinutes < 0 {
		return NewValidationError("base minutes exceed the minutes in a week")
	}
	return nil
}

// Recompute derives AvailableMinutes from the base fields.
func (b *TimeBudget) Recompute() {
	b.AvailableMinutes = AvailableMinutes(b.SleepMinutes, b.WorkMinutes, b.MealsMinutes, b.HygieneMinutes, b.TransportMinutes)
}

// Validate checks duration and satisfaction of an activity.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("activity name is required")
	}
	if !IsValidDuration(a.DurationMinutes) {
		return ErrInvalidActivityDuration
	}
	if a.SatisfactionLevel != nil && !IsValidSatisfactionLevel(*a.SatisfactionLevel) {
		return NewValidationError("satisfaction level must be between 1 and 5")
	}
	if a.Date.IsZero() {
		return NewValidationError("activity date is required")
	}
	return nil
}

// Validate checks title, time range, block type and recurrence.
func (b CalendarBlock) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return NewValidationError("title is required")
	}
	if !IsValidTimeRange(b.StartTime, b.EndTime) {
		return NewValidationError("end time must be after start time")
	}
	if !b.BlockType.IsValid() {
		return NewValidationError("invalid block type")
	}
	if b.Recurrence != nil && !b.Recurrence.IsValid() {
		return NewValidationError("invalid recurrence")
	}
	return nil
}
