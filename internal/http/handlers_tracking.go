package http

import (
	"net/http"

	"timebudget/internal/ports"
	"timebudget/internal/services"
)

type budgetRequest struct {
	WeekStart        *string `json:"weekStart"`
	SleepMinutes     *int    `json:"sleepMinutes"`
	WorkMinutes      *int    `json:"workMinutes"`
	MealsMinutes     *int    `json:"mealsMinutes"`
	HygieneMinutes   *int    `json:"hygieneMinutes"`
	TransportMinutes *int    `json:"transportMinutes"`
}

func (req budgetRequest) input() (services.BudgetInput, error) {
	week, err := parseTimePtr("weekStart", req.WeekStart)
	if err != nil {
		return services.BudgetInput{}, err
	}
	return services.BudgetInput{
		WeekStart:        week,
		SleepMinutes:     req.SleepMinutes,
		WorkMinutes:      req.WorkMinutes,
		MealsMinutes:     req.MealsMinutes,
		HygieneMinutes:   req.HygieneMinutes,
		TransportMinutes: req.TransportMinutes,
	}, nil
}

func (s *Server) decodeBudget(w http.ResponseWriter, r *http.Request) (services.BudgetInput, error) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.BudgetInput{}, err
	}
	return req.input()
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	in, err := s.decodeBudget(w, r)
	if err != nil {
		s.fail(w, r, "budget.create", err)
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), userID, in)
	if err != nil {
		s.fail(w, r, "budget.create", err)
		return
	}
	Created(toBudget(b)).Write(w)
}

func (s *Server) handleCurrentBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	b, err := s.svc.Budgets.Current(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "budget.current", err)
		return
	}
	OK(toBudget(b)).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	in, err := s.decodeBudget(w, r)
	if err != nil {
		s.fail(w, r, "budget.update", err)
		return
	}
	b, err := s.svc.Budgets.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		s.fail(w, r, "budget.update", err)
		return
	}
	OK(toBudget(b)).Write(w)
}

type createActivityRequest struct {
	Name                  string  `json:"name"`
	Description           *string `json:"description"`
	CategoryID            string  `json:"categoryId"`
	DurationMinutes       int     `json:"durationMinutes"`
	Date                  *string `json:"date"`
	AlignedWithPriorities bool    `json:"alignedWithPriorities"`
	SatisfactionLevel     *int    `json:"satisfactionLevel"`
}

type updateActivityRequest struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	CategoryID            *string `json:"categoryId"`
	DurationMinutes       *int    `json:"durationMinutes"`
	Date                  *string `json:"date"`
	AlignedWithPriorities *bool   `json:"alignedWithPriorities"`
	SatisfactionLevel     *int    `json:"satisfactionLevel"`
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "activity.create", err)
		return
	}
	in := services.ActivityInput{
		Name:                  req.Name,
		Description:           req.Description,
		CategoryID:            req.CategoryID,
		DurationMinutes:       req.DurationMinutes,
		AlignedWithPriorities: req.AlignedWithPriorities,
		SatisfactionLevel:     req.SatisfactionLevel,
	}
	if req.Date != nil {
		date, err := parseTime("date", *req.Date)
		if err != nil {
			s.fail(w, r, "activity.create", err)
			return
		}
		in.Date = date
	}

	a, err := s.svc.Activities.Create(r.Context(), userID, in)
	if err != nil {
		s.fail(w, r, "activity.create", err)
		return
	}
	Created(toActivity(a)).Write(w)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	filter, err := activityFilter(r)
	if err != nil {
		s.fail(w, r, "activity.list", err)
		return
	}
	views, err := s.svc.Activities.List(r.Context(), userID, filter)
	if err != nil {
		s.fail(w, r, "activity.list", err)
		return
	}
	OK(toActivities(views)).Write(w)
}

func activityFilter(r *http.Request) (ports.ActivityFilter, error) {
	q := r.URL.Query()
	var f ports.ActivityFilter
	var err error
	if f.StartDate, err = queryTime(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(q, "endDate"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(q, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(q, "offset", 0); err != nil {
		return f, err
	}
	f.CategoryID = q.Get("categoryId")
	return f, nil
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req updateActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "activity.update", err)
		return
	}
	date, err := parseTimePtr("date", req.Date)
	if err != nil {
		s.fail(w, r, "activity.update", err)
		return
	}
	patch := ports.ActivityPatch{
		Name:                  req.Name,
		Description:           req.Description,
		CategoryID:            req.CategoryID,
		DurationMinutes:       req.DurationMinutes,
		Date:                  date,
		AlignedWithPriorities: req.AlignedWithPriorities,
		SatisfactionLevel:     req.SatisfactionLevel,
	}

	a, err := s.svc.Activities.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, "activity.update", err)
		return
	}
	OK(toActivity(a)).Write(w)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Activities.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, "activity.delete", err)
		return
	}
	NoContent().Write(w)
}
