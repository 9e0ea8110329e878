package http

import (
	"time"

	"timebudget/internal/core"
	"timebudget/internal/services"
)

// Response shapes. Field names are the camelCase names clients depend on.

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type authDTO struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type categoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

type budgetDTO struct {
	ID               string    `json:"id"`
	WeekStart        time.Time `json:"weekStart"`
	SleepMinutes     int       `json:"sleepMinutes"`
	WorkMinutes      int       `json:"workMinutes"`
	MealsMinutes     int       `json:"mealsMinutes"`
	HygieneMinutes   int       `json:"hygieneMinutes"`
	TransportMinutes int       `json:"transportMinutes"`
	AvailableMinutes int       `json:"availableMinutes"`
	BaseMinutes      int       `json:"baseMinutes"`
	CreatedAt        time.Time `json:"createdAt"`
}

type activityDTO struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           *string   `json:"description"`
	CategoryID            string    `json:"categoryId"`
	CategoryName          string    `json:"categoryName"`
	DurationMinutes       int       `json:"durationMinutes"`
	Date                  time.Time `json:"date"`
	AlignedWithPriorities bool      `json:"alignedWithPriorities"`
	SatisfactionLevel     *int      `json:"satisfactionLevel"`
	CreatedAt             time.Time `json:"createdAt"`
}

type priorityDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	Order            int     `json:"order"`
	AllocatedMinutes int     `json:"allocatedMinutes"`
	IsActive         bool    `json:"isActive"`
}

type blockDTO struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	StartTime       time.Time        `json:"startTime"`
	EndTime         time.Time        `json:"endTime"`
	DurationMinutes int              `json:"durationMinutes"`
	BlockType       core.BlockType   `json:"blockType"`
	IsRecurring     bool             `json:"isRecurring"`
	Recurrence      *core.Recurrence `json:"recurrence"`
}

type eliminationDTO struct {
	ID               string    `json:"id"`
	ActivityName     string    `json:"activityName"`
	Reason           *string   `json:"reason"`
	RecoveredMinutes int       `json:"recoveredMinutes"`
	EliminatedAt     time.Time `json:"eliminatedAt"`
}

type eliminationsDTO struct {
	Eliminations            []eliminationDTO `json:"eliminations"`
	TotalRecoveredMinutes   int              `json:"totalRecoveredMinutes"`
	TotalRecoveredFormatted string           `json:"totalRecoveredFormatted"`
}

type reviewDTO struct {
	ID                     string     `json:"id"`
	WeekStart              time.Time  `json:"weekStart"`
	WeekEnd                time.Time  `json:"weekEnd"`
	TotalTrackedMinutes    int        `json:"totalTrackedMinutes"`
	PriorityAlignedMinutes int        `json:"priorityAlignedMinutes"`
	WastedMinutes          int        `json:"wastedMinutes"`
	AlignmentPercentage    int        `json:"alignmentPercentage"`
	WastedPercentage       int        `json:"wastedPercentage"`
	Wins                   []string   `json:"wins"`
	Challenges             []string   `json:"challenges"`
	Improvements           []string   `json:"improvements"`
	OverallScore           *int       `json:"overallScore"`
	IsCompleted            bool       `json:"isCompleted"`
	CompletedAt            *time.Time `json:"completedAt"`
}

type breakdownDTO struct {
	CategoryID    string `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor"`
	TotalMinutes  int    `json:"totalMinutes"`
	Percentage    int    `json:"percentage"`
}

type weeklyAnalyticsDTO struct {
	WeekStart              time.Time      `json:"weekStart"`
	WeekEnd                time.Time      `json:"weekEnd"`
	TotalTrackedMinutes    int            `json:"totalTrackedMinutes"`
	AvailableMinutes       int            `json:"availableMinutes"`
	UsagePercentage        int            `json:"usagePercentage"`
	PriorityAlignedMinutes int            `json:"priorityAlignedMinutes"`
	PriorityAlignment      int            `json:"priorityAlignment"`
	WastedMinutes          int            `json:"wastedMinutes"`
	AverageSatisfaction    float64        `json:"averageSatisfaction"`
	ActivityCount          int            `json:"activityCount"`
	CategoryBreakdown      []breakdownDTO `json:"categoryBreakdown"`
	FormattedTracked       string         `json:"formattedTracked"`
	FormattedAvailable     string         `json:"formattedAvailable"`
}

type trendDTO struct {
	Week            time.Time `json:"week"`
	TotalTracked    int       `json:"totalTracked"`
	PriorityAligned int       `json:"priorityAligned"`
	Score           int       `json:"score"`
}

func toUser(u core.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toAuth(res services.AuthResult) authDTO {
	return authDTO{User: toUser(res.User), Token: res.Token}
}

func toCategories(cats []core.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{
			ID: c.ID, Name: c.Name, Description: c.Description,
			Color: c.Color, Icon: c.Icon, IsDefault: c.IsDefault,
		})
	}
	return out
}

func toBudget(b core.TimeBudget) budgetDTO {
	return budgetDTO{
		ID:               b.ID,
		WeekStart:        b.WeekStart,
		SleepMinutes:     b.SleepMinutes,
		WorkMinutes:      b.WorkMinutes,
		MealsMinutes:     b.MealsMinutes,
		HygieneMinutes:   b.HygieneMinutes,
		TransportMinutes: b.TransportMinutes,
		AvailableMinutes: b.AvailableMinutes,
		BaseMinutes:      b.BaseMinutes(),
		CreatedAt:        b.CreatedAt,
	}
}

func toActivity(a services.ActivityView) activityDTO {
	return activityDTO{
		ID:                    a.ID,
		Name:                  a.Name,
		Description:           a.Description,
		CategoryID:            a.CategoryID,
		CategoryName:          a.CategoryName,
		DurationMinutes:       a.DurationMinutes,
		Date:                  a.Date,
		AlignedWithPriorities: a.AlignedWithPriorities,
		SatisfactionLevel:     a.SatisfactionLevel,
		CreatedAt:             a.CreatedAt,
	}
}

func toActivities(views []services.ActivityView) []activityDTO {
	out := make([]activityDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toActivity(v))
	}
	return out
}

func toPriority(p core.Priority) priorityDTO {
	return priorityDTO{
		ID: p.ID, Name: p.Name, Description: p.Description,
		Order: p.Order, AllocatedMinutes: p.AllocatedMinutes, IsActive: p.IsActive,
	}
}

func toPriorities(ps []core.Priority) []priorityDTO {
	out := make([]priorityDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPriority(p))
	}
	return out
}

func toBlock(b core.CalendarBlock) blockDTO {
	return blockDTO{
		ID:              b.ID,
		Title:           b.Title,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		DurationMinutes: b.DurationMinutes(),
		BlockType:       b.BlockType,
		IsRecurring:     b.IsRecurring,
		Recurrence:      b.Recurrence,
	}
}

func toBlocks(bs []core.CalendarBlock) []blockDTO {
	out := make([]blockDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBlock(b))
	}
	return out
}

func toElimination(e core.Elimination) eliminationDTO {
	return eliminationDTO{
		ID: e.ID, ActivityName: e.ActivityName, Reason: e.Reason,
		RecoveredMinutes: e.RecoveredMinutes, EliminatedAt: e.EliminatedAt,
	}
}

func toEliminations(l services.EliminationList) eliminationsDTO {
	items := make([]eliminationDTO, 0, len(l.Items))
	for _, e := range l.Items {
		items = append(items, toElimination(e))
	}
	return eliminationsDTO{
		Eliminations:            items,
		TotalRecoveredMinutes:   l.TotalRecoveredMinutes,
		TotalRecoveredFormatted: core.FormatMinutes(l.TotalRecoveredMinutes),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toReview(r core.WeeklyReview) reviewDTO {
	return reviewDTO{
		ID:                     r.ID,
		WeekStart:              r.WeekStart,
		WeekEnd:                r.WeekEnd(),
		TotalTrackedMinutes:    r.TotalTrackedMinutes,
		PriorityAlignedMinutes: r.PriorityAlignedMinutes,
		WastedMinutes:          r.WastedMinutes,
		AlignmentPercentage:    r.AlignmentPercentage(),
		WastedPercentage:       r.WastedPercentage(),
		Wins:                   nonNil(r.Wins),
		Challenges:             nonNil(r.Challenges),
		Improvements:           nonNil(r.Improvements),
		OverallScore:           r.OverallScore,
		IsCompleted:            r.IsCompleted,
		CompletedAt:            r.CompletedAt,
	}
}

func toReviews(rs []core.WeeklyReview) []reviewDTO {
	out := make([]reviewDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReview(r))
	}
	return out
}

func toWeeklyAnalytics(a services.WeeklyAnalytics) weeklyAnalyticsDTO {
	breakdown := make([]breakdownDTO, 0, len(a.CategoryBreakdown))
	for _, c := range a.CategoryBreakdown {
		breakdown = append(breakdown, breakdownDTO{
			CategoryID:    c.CategoryID,
			CategoryName:  c.CategoryName,
			CategoryColor: c.CategoryColor,
			TotalMinutes:  c.TotalMinutes,
			Percentage:    c.Percentage,
		})
	}
	return weeklyAnalyticsDTO{
		WeekStart:              a.WeekStart,
		WeekEnd:                a.WeekEnd,
		TotalTrackedMinutes:    a.TotalTrackedMinutes,
		AvailableMinutes:       a.AvailableMinutes,
		UsagePercentage:        a.UsagePercentage,
		PriorityAlignedMinutes: a.PriorityAlignedMinutes,
		PriorityAlignment:      a.PriorityAlignment,
		WastedMinutes:          a.WastedMinutes,
		AverageSatisfaction:    a.AverageSatisfaction,
		ActivityCount:          a.ActivityCount,
		CategoryBreakdown:      breakdown,
		FormattedTracked:       a.FormattedTracked(),
		FormattedAvailable:     a.FormattedAvailable(),
	}
}

func toTrends(points []services.TrendPoint) []trendDTO {
	out := make([]trendDTO, 0, len(points))
	for _, p := range points {
		out = append(out, trendDTO{
			Week: p.WeekStart, TotalTracked: p.TotalTracked,
			PriorityAligned: p.PriorityAligned, Score: p.Score,
		})
	}
	return out
}
