package core

import (
	"fmt"
	"math"
	"time"
)

const (
	MinutesPerWeek = 7 * 24 * 60

	DefaultSleepMinutes     = 3360
	DefaultWorkMinutes      = 2400
	DefaultMealsMinutes     = 630
	DefaultHygieneMinutes   = 420
	DefaultTransportMinutes = 300

	MaxPriorities = 4
	// MinPriorities is advisory only; no operation rejects fewer active priorities.
	MinPriorities = 2

	MinSatisfaction = 1
	MaxSatisfaction = 5
	MinScore        = 0
	MaxScore        = 100

	// WastedSatisfactionThreshold marks unaligned activities rated at or below it as wasted time.
	WastedSatisfactionThreshold = 2

	DefaultCategoryColor = "#6B7280"
	UnknownCategoryName  = "Desconocido"
)

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekEnd returns the exclusive end of the week starting at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7)
}

// AvailableMinutes may be negative; callers decide whether that is an error.
func AvailableMinutes(sleep, work, meals, hygiene, transport int) int {
	return MinutesPerWeek - (sleep + work + meals + hygiene + transport)
}

func AlignmentPercentage(totalTracked, priorityAligned int) int {
	return Percentage(priorityAligned, totalTracked)
}

func WastedPercentage(totalTracked, wasted int) int {
	return Percentage(wasted, totalTracked)
}

// Percentage returns round(part/whole*100), or 0 when whole is 0.
func Percentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(RoundHalfUp(float64(part) / float64(whole) * 100))
}

// RoundHalfUp rounds .5 towards positive infinity.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundOneDecimal rounds to a single decimal place, half up.
func RoundOneDecimal(x float64) float64 {
	return RoundHalfUp(x*10) / 10
}

// FormatMinutes renders minutes as "2h 30m", dropping a zero component.
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// BlockDuration is the span between start and end rounded to whole minutes.
func BlockDuration(start, end time.Time) int {
	return int(RoundHalfUp(float64(end.Sub(start).Milliseconds()) / 60000))
}

// WeekTotals holds the activity-derived metrics of a week.
type WeekTotals struct {
	TrackedMinutes         int
	PriorityAlignedMinutes int
	WastedMinutes          int
	AverageSatisfaction    float64
}

// SumActivities derives the week metrics from a set of activities.
func SumActivities(activities []Activity) WeekTotals {
	var (
		totals   WeekTotals
		rated    int
		ratedSum int
	)
	for _, a := range activities {
		totals.TrackedMinutes += a.DurationMinutes
		if a.AlignedWithPriorities {
			totals.PriorityAlignedMinutes += a.DurationMinutes
		}
		if a.SatisfactionLevel != nil {
			rated++
			ratedSum += *a.SatisfactionLevel
			if !a.AlignedWithPriorities && *a.SatisfactionLevel <= WastedSatisfactionThreshold {
				totals.WastedMinutes += a.DurationMinutes
			}
		}
	}
	if rated > 0 {
		totals.AverageSatisfaction = RoundOneDecimal(float64(ratedSum) / float64(rated))
	}
	return totals
}
