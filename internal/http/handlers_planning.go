package http

import (
	"net/http"

	"timebudget/internal/core"
	"timebudget/internal/services"
)

type createPriorityRequest struct {
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	AllocatedMinutes *int    `json:"allocatedMinutes"`
}

type updatePriorityRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	AllocatedMinutes *int    `json:"allocatedMinutes"`
	IsActive         *bool   `json:"isActive"`
}

type reorderRequest struct {
	PriorityIDs []string `json:"priorityIds"`
}

func (s *Server) handleCreatePriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createPriorityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "priority.create", err)
		return
	}
	p, err := s.svc.Priorities.Create(r.Context(), userID, services.PriorityInput{
		Name: req.Name, Description: req.Description, AllocatedMinutes: req.AllocatedMinutes,
	})
	if err != nil {
		s.fail(w, r, "priority.create", err)
		return
	}
	Created(toPriority(p)).Write(w)
}

// handleListPriorities returns active priorities unless ?all=true or ?active=false.
func (s *Server) handleListPriorities(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	all, err := queryBool(q, "all", false)
	if err != nil {
		s.fail(w, r, "priority.list", err)
		return
	}
	activeOnly, err := queryBool(q, "active", true)
	if err != nil {
		s.fail(w, r, "priority.list", err)
		return
	}

	ps, err := s.svc.Priorities.List(r.Context(), userID, all || !activeOnly)
	if err != nil {
		s.fail(w, r, "priority.list", err)
		return
	}
	OK(toPriorities(ps)).Write(w)
}

func (s *Server) handleUpdatePriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req updatePriorityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "priority.update", err)
		return
	}
	p, err := s.svc.Priorities.Update(r.Context(), userID, r.PathValue("id"), services.PriorityPatch{
		Name:             req.Name,
		Description:      req.Description,
		AllocatedMinutes: req.AllocatedMinutes,
		IsActive:         req.IsActive,
	})
	if err != nil {
		s.fail(w, r, "priority.update", err)
		return
	}
	OK(toPriority(p)).Write(w)
}

func (s *Server) handleReorderPriorities(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "priority.reorder", err)
		return
	}
	ps, err := s.svc.Priorities.Reorder(r.Context(), userID, req.PriorityIDs)
	if err != nil {
		s.fail(w, r, "priority.reorder", err)
		return
	}
	OK(toPriorities(ps)).Write(w)
}

func (s *Server) handleDeletePriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Priorities.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, "priority.delete", err)
		return
	}
	NoContent().Write(w)
}

type createBlockRequest struct {
	Title       string           `json:"title"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	BlockType   core.BlockType   `json:"blockType"`
	IsRecurring bool             `json:"isRecurring"`
	Recurrence  *core.Recurrence `json:"recurrence"`
}

type updateBlockRequest struct {
	Title       *string          `json:"title"`
	StartTime   *string          `json:"startTime"`
	EndTime     *string          `json:"endTime"`
	BlockType   *core.BlockType  `json:"blockType"`
	IsRecurring *bool            `json:"isRecurring"`
	Recurrence  *core.Recurrence `json:"recurrence"`
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "calendar.create", err)
		return
	}
	start, err := parseTime("startTime", req.StartTime)
	if err != nil {
		s.fail(w, r, "calendar.create", err)
		return
	}
	end, err := parseTime("endTime", req.EndTime)
	if err != nil {
		s.fail(w, r, "calendar.create", err)
		return
	}

	b, err := s.svc.Calendar.Create(r.Context(), userID, services.BlockInput{
		Title:       req.Title,
		StartTime:   start,
		EndTime:     end,
		BlockType:   req.BlockType,
		IsRecurring: req.IsRecurring,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		s.fail(w, r, "calendar.create", err)
		return
	}
	Created(toBlock(b)).Write(w)
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	start, err := queryTime(q, "startDate")
	if err != nil {
		s.fail(w, r, "calendar.list", err)
		return
	}
	end, err := queryTime(q, "endDate")
	if err != nil {
		s.fail(w, r, "calendar.list", err)
		return
	}

	bs, err := s.svc.Calendar.List(r.Context(), userID, start, end)
	if err != nil {
		s.fail(w, r, "calendar.list", err)
		return
	}
	OK(toBlocks(bs)).Write(w)
}

func (s *Server) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req updateBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "calendar.update", err)
		return
	}
	start, err := parseTimePtr("startTime", req.StartTime)
	if err != nil {
		s.fail(w, r, "calendar.update", err)
		return
	}
	end, err := parseTimePtr("endTime", req.EndTime)
	if err != nil {
		s.fail(w, r, "calendar.update", err)
		return
	}

	b, err := s.svc.Calendar.Update(r.Context(), userID, r.PathValue("id"), services.BlockPatch{
		Title:       req.Title,
		StartTime:   start,
		EndTime:     end,
		BlockType:   req.BlockType,
		IsRecurring: req.IsRecurring,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		s.fail(w, r, "calendar.update", err)
		return
	}
	OK(toBlock(b)).Write(w)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Calendar.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, "calendar.delete", err)
		return
	}
	NoContent().Write(w)
}

type createEliminationRequest struct {
	ActivityName     string  `json:"activityName"`
	Reason           *string `json:"reason"`
	RecoveredMinutes *int    `json:"recoveredMinutes"`
}

func (s *Server) handleCreateElimination(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createEliminationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "elimination.create", err)
		return
	}
	e, err := s.svc.Eliminations.Create(r.Context(), userID, services.EliminationInput{
		ActivityName: req.ActivityName, Reason: req.Reason, RecoveredMinutes: req.RecoveredMinutes,
	})
	if err != nil {
		s.fail(w, r, "elimination.create", err)
		return
	}
	Created(toElimination(e)).Write(w)
}

func (s *Server) handleListEliminations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	list, err := s.svc.Eliminations.List(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "elimination.list", err)
		return
	}
	OK(toEliminations(list)).Write(w)
}
