package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday midday", time.Date(2024, 1, 1, 15, 30, 0, 0, time.Local)},
		{"wednesday", time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)},
		{"saturday late", time.Date(2024, 1, 6, 23, 59, 59, 999, time.Local)},
		{"sunday", time.Date(2024, 1, 7, 12, 0, 0, 0, time.Local)},
		{"monday start", monday},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			assert.True(t, got.Equal(monday), "WeekStart(%v) = %v, want %v", tc.in, got, monday)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.True(t, WeekStart(got).Equal(got), "WeekStart must be idempotent")
		})
	}
}

func TestWeekStartAcrossMonthBoundary(t *testing.T) {
	got := WeekStart(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), WeekEnd(got))
}

func TestAvailableMinutes(t *testing.T) {
	got := AvailableMinutes(DefaultSleepMinutes, DefaultWorkMinutes, DefaultMealsMinutes, DefaultHygieneMinutes, DefaultTransportMinutes)
	assert.Equal(t, 2970, got)
	assert.Equal(t, MinutesPerWeek, AvailableMinutes(0, 0, 0, 0, 0))
	assert.Equal(t, -20, AvailableMinutes(10000, 100, 0, 0, 0))
}

func TestPercentages(t *testing.T) {
	assert.Equal(t, 0, AlignmentPercentage(0, 50))
	assert.Equal(t, 0, WastedPercentage(0, 50))
	assert.Equal(t, 67, AlignmentPercentage(180, 120))
	assert.Equal(t, 6, Percentage(180, 2970))
	assert.Equal(t, 1, Percentage(1, 200))
	assert.Equal(t, 100, WastedPercentage(30, 30))
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h",
		120: "2h",
		150: "2h 30m",
		61:  "1h 1m",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMinutes(in), "FormatMinutes(%d)", in)
	}
}

func TestBlockDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 60, BlockDuration(start, start.Add(time.Hour)))
	assert.Equal(t, 2, BlockDuration(start, start.Add(90*time.Second)))
	assert.Equal(t, 1, BlockDuration(start, start.Add(89*time.Second)))
}

func TestSumActivities(t *testing.T) {
	four, two := 4, 2
	acts := []Activity{
		{DurationMinutes: 120, AlignedWithPriorities: true, SatisfactionLevel: &four},
		{DurationMinutes: 60, SatisfactionLevel: &two},
		{DurationMinutes: 30},
	}

	got := SumActivities(acts)
	assert.Equal(t, 210, got.TrackedMinutes)
	assert.Equal(t, 120, got.PriorityAlignedMinutes)
	assert.Equal(t, 60, got.WastedMinutes)
	assert.InDelta(t, 3.0, got.AverageSatisfaction, 0.0001)

	empty := SumActivities(nil)
	assert.Zero(t, empty.TrackedMinutes)
	assert.Zero(t, empty.AverageSatisfaction)
}

func TestRoundOneDecimal(t *testing.T) {
	assert.InDelta(t, 3.7, RoundOneDecimal(11.0/3.0), 0.0001)
	assert.InDelta(t, 4.0, RoundOneDecimal(4.0), 0.0001)
	assert.InDelta(t, 2.3, RoundOneDecimal(7.0/3.0), 0.0001)
}

func TestTimeBudgetValidate(t *testing.T) {
	b := TimeBudget{SleepMinutes: DefaultSleepMinutes, WorkMinutes: DefaultWorkMinutes}
	b.Recompute()
	require.NoError(t, b.Validate())
	assert.Equal(t, MinutesPerWeek-DefaultSleepMinutes-DefaultWorkMinutes, b.AvailableMinutes)
	assert.Equal(t, DefaultSleepMinutes+DefaultWorkMinutes, b.BaseMinutes())

	neg := TimeBudget{SleepMinutes: -1}
	neg.Recompute()
	assert.Equal(t, KindValidation, KindOf(neg.Validate()))

	over := TimeBudget{SleepMinutes: MinutesPerWeek, WorkMinutes: 1}
	over.Recompute()
	assert.Equal(t, KindValidation, KindOf(over.Validate()))
}
