package core

import (
	"time"
)

const (
	BlockPriority  BlockType = "PRIORITY"
	BlockRoutine   BlockType = "ROUTINE"
	BlockProtected BlockType = "PROTECTED"

	RecurDaily    Recurrence = "DAILY"
	RecurWeekly   Recurrence = "WEEKLY"
	RecurWeekdays Recurrence = "WEEKDAYS"
	RecurCustom   Recurrence = "CUSTOM"
)

type (
	BlockType  string
	Recurrence string

	User struct {
		ID           string
		Email        string
		PasswordHash string
		Name         string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Category is global, shared by every user.
	Category struct {
		ID          string
		Name        string
		Description string
		Color       string
		Icon        string
		IsDefault   bool
		CreatedAt   time.Time
	}

	TimeBudget struct {
		ID               string
		UserID           string
		WeekStart        time.Time
		SleepMinutes     int
		WorkMinutes      int
		MealsMinutes     int
		HygieneMinutes   int
		TransportMinutes int
		AvailableMinutes int
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	Activity struct {
		ID                    string
		UserID                string
		CategoryID            string
		TimeBudgetID          *string
		Name                  string
		Description           *string
		DurationMinutes       int
		Date                  time.Time
		AlignedWithPriorities bool
		SatisfactionLevel     *int
		CreatedAt             time.Time
		UpdatedAt             time.Time
	}

	Priority struct {
		ID               string
		UserID           string
		Name             string
		Description      *string
		Order            int
		AllocatedMinutes int
		IsActive         bool
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	CalendarBlock struct {
		ID          string
		UserID      string
		Title       string
		StartTime   time.Time
		EndTime     time.Time
		BlockType   BlockType
		IsRecurring bool
		Recurrence  *Recurrence
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Elimination struct {
		ID               string
		UserID           string
		ActivityName     string
		Reason           *string
		RecoveredMinutes int
		EliminatedAt     time.Time
		CreatedAt        time.Time
	}

	WeeklyReview struct {
		ID                     string
		UserID                 string
		WeekStart              time.Time
		TotalTrackedMinutes    int
		PriorityAlignedMinutes int
		WastedMinutes          int
		Wins                   []string
		Challenges             []string
		Improvements           []string
		OverallScore           *int
		IsCompleted            bool
		CompletedAt            *time.Time
		CreatedAt              time.Time
		UpdatedAt              time.Time
	}

	// CategoryTotal is the per-category aggregate of activity minutes.
	CategoryTotal struct {
		CategoryID   string
		CategoryName string
		TotalMinutes int
	}
)

// IsValid reports whether t is one of the known block types.
func (t BlockType) IsValid() bool {
	switch t {
	case BlockPriority, BlockRoutine, BlockProtected:
		return true
	default:
		return false
	}
}

// IsValid reports whether r is one of the known recurrence rules.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurWeekdays, RecurCustom:
		return true
	default:
		return false
	}
}

// BaseMinutes is the part of the week consumed by fixed life categories.
func (b TimeBudget) BaseMinutes() int {
	return MinutesPerWeek - b.AvailableMinutes
}

// DurationMinutes is the block length rounded to the nearest minute.
func (b CalendarBlock) DurationMinutes() int {
	return BlockDuration(b.StartTime, b.EndTime)
}

// AlignmentPercentage is computed on read and never stored.
func (r WeeklyReview) AlignmentPercentage() int {
	return AlignmentPercentage(r.TotalTrackedMinutes, r.PriorityAlignedMinutes)
}

func (r WeeklyReview) WastedPercentage() int {
	return WastedPercentage(r.TotalTrackedMinutes, r.WastedMinutes)
}

// WeekEnd returns the exclusive upper bound of the review week.
func (r WeeklyReview) WeekEnd() time.Time {
	return WeekEnd(r.WeekStart)
}
