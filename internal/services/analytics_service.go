package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

const (
	defaultTrendWeeks = 8
	maxTrendWeeks     = 52
)

type CategoryBreakdown struct {
	CategoryID    string
	CategoryName  string
	CategoryColor string
	TotalMinutes  int
	Percentage    int
}

type WeeklyAnalytics struct {
	WeekStart              time.Time
	WeekEnd                time.Time
	AvailableMinutes       int
	TotalTrackedMinutes    int
	PriorityAlignedMinutes int
	WastedMinutes          int
	UsagePercentage        int
	PriorityAlignment      int
	AverageSatisfaction    float64
	ActivityCount          int
	CategoryBreakdown      []CategoryBreakdown
}

func (a WeeklyAnalytics) FormattedTracked() string   { return core.FormatMinutes(a.TotalTrackedMinutes) }
func (a WeeklyAnalytics) FormattedAvailable() string { return core.FormatMinutes(a.AvailableMinutes) }

type TrendPoint struct {
	WeekStart       time.Time
	TotalTracked    int
	PriorityAligned int
	Score           int
}

type AnalyticsService struct {
	budgets    ports.TimeBudgetRepository
	activities ports.ActivityRepository
	categories ports.CategoryRepository
	reviews    ports.WeeklyReviewRepository
	now        func() time.Time
}

// Weekly computes the metrics of the week containing weekStart (now when nil).
// A missing budget yields zero available minutes rather than an error.
func (s *AnalyticsService) Weekly(ctx context.Context, userID string, weekStart *time.Time) (WeeklyAnalytics, error) {
	ref := s.now()
	if weekStart != nil {
		ref = *weekStart
	}
	start := weekOf(ref)
	end := core.WeekEnd(start)

	var (
		available  int
		activities []core.Activity
		sums       []core.CategoryTotal
		categories []core.Category
	)

	// Independent reads; aggregation waits for all of them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.budgets.FindByUserAndWeek(gctx, userID, start)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find week budget: %w", err)
		}
		available = b.AvailableMinutes
		return nil
	})
	g.Go(func() error {
		var err error
		if activities, err = s.activities.FindByDateRange(gctx, userID, start, end); err != nil {
			return fmt.Errorf("load week activities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sums, err = s.activities.SumDurationByCategory(gctx, userID, start, end); err != nil {
			return fmt.Errorf("sum minutes by category: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = s.categories.FindAll(gctx); err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return WeeklyAnalytics{}, err
	}

	totals := core.SumActivities(activities)
	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		colors[c.ID] = c.Color
	}

	breakdown := make([]CategoryBreakdown, 0, len(sums))
	for _, cs := range sums {
		color, ok := colors[cs.CategoryID]
		if !ok || color == "" {
			color = core.DefaultCategoryColor
		}
		breakdown = append(breakdown, CategoryBreakdown{
			CategoryID:    cs.CategoryID,
			CategoryName:  cs.CategoryName,
			CategoryColor: color,
			TotalMinutes:  cs.TotalMinutes,
			Percentage:    core.Percentage(cs.TotalMinutes, totals.TrackedMinutes),
		})
	}

	return WeeklyAnalytics{
		WeekStart:              start,
		WeekEnd:                end,
		AvailableMinutes:       available,
		TotalTrackedMinutes:    totals.TrackedMinutes,
		PriorityAlignedMinutes: totals.PriorityAlignedMinutes,
		WastedMinutes:          totals.WastedMinutes,
		UsagePercentage:        core.Percentage(totals.TrackedMinutes, available),
		PriorityAlignment:      core.AlignmentPercentage(totals.TrackedMinutes, totals.PriorityAlignedMinutes),
		AverageSatisfaction:    totals.AverageSatisfaction,
		ActivityCount:          len(activities),
		CategoryBreakdown:      breakdown,
	}, nil
}

// Trends returns the completed reviews among the last weeks reviews, oldest first.
func (s *AnalyticsService) Trends(ctx context.Context, userID string, weeks int) ([]TrendPoint, error) {
	if weeks <= 0 {
		weeks = defaultTrendWeeks
	}
	if weeks > maxTrendWeeks {
		weeks = maxTrendWeeks
	}
	reviews, err := s.reviews.FindByUser(ctx, userID, weeks)
	if err != nil {
		return nil, fmt.Errorf("list weekly reviews: %w", err)
	}

	points := make([]TrendPoint, 0, len(reviews))
	for i := len(reviews) - 1; i >= 0; i-- {
		r := reviews[i]
		if !r.IsCompleted {
			continue
		}
		score := 0
		if r.OverallScore != nil {
			score = *r.OverallScore
		}
		points = append(points, TrendPoint{
			WeekStart:       r.WeekStart,
			TotalTracked:    r.TotalTrackedMinutes,
			PriorityAligned: r.PriorityAlignedMinutes,
			Score:           score,
		})
	}
	return points, nil
}
