package http

import (
	"net/http"

	"timebudget/internal/core"
	"timebudget/internal/services"
)

const (
	defaultHistoryLimit = 10
	defaultTrendWeeks   = 8
)

type completeReviewRequest struct {
	Wins         []string `json:"wins"`
	Challenges   []string `json:"challenges"`
	Improvements []string `json:"improvements"`
	OverallScore *int     `json:"overallScore"`
}

// handleCurrentReview returns the review of the current week, or of the week
// containing ?weekStart when given. The review is created on first access.
func (s *Server) handleCurrentReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	week, err := queryTime(r.URL.Query(), "weekStart")
	if err != nil {
		s.fail(w, r, "review.current", err)
		return
	}

	var review core.WeeklyReview
	if week != nil {
		review, err = s.svc.Reviews.ForWeek(r.Context(), userID, *week)
	} else {
		review, err = s.svc.Reviews.Current(r.Context(), userID)
	}
	if err != nil {
		s.fail(w, r, "review.current", err)
		return
	}
	OK(toReview(review)).Write(w)
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r.URL.Query(), "limit", defaultHistoryLimit)
	if err != nil {
		s.fail(w, r, "review.history", err)
		return
	}
	reviews, err := s.svc.Reviews.History(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, r, "review.history", err)
		return
	}
	OK(toReviews(reviews)).Write(w)
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req completeReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "review.complete", err)
		return
	}
	if req.OverallScore == nil {
		s.fail(w, r, "review.complete", core.NewValidationError("overallScore is required"))
		return
	}

	review, err := s.svc.Reviews.Complete(r.Context(), userID, r.PathValue("id"), services.CompleteReviewInput{
		Wins:         req.Wins,
		Challenges:   req.Challenges,
		Improvements: req.Improvements,
		OverallScore: *req.OverallScore,
	})
	if err != nil {
		s.fail(w, r, "review.complete", err)
		return
	}
	OK(toReview(review)).Write(w)
}

func (s *Server) handleWeeklyAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	week, err := queryTime(r.URL.Query(), "weekStart")
	if err != nil {
		s.fail(w, r, "analytics.weekly", err)
		return
	}
	a, err := s.svc.Analytics.Weekly(r.Context(), userID, week)
	if err != nil {
		s.fail(w, r, "analytics.weekly", err)
		return
	}
	OK(toWeeklyAnalytics(a)).Write(w)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	weeks, err := queryInt(r.URL.Query(), "weeks", defaultTrendWeeks)
	if err != nil {
		s.fail(w, r, "analytics.trends", err)
		return
	}
	points, err := s.svc.Analytics.Trends(r.Context(), userID, weeks)
	if err != nil {
		s.fail(w, r, "analytics.trends", err)
		return
	}
	OK(toTrends(points)).Write(w)
}
