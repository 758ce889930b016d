package goalshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/kpi"
	"hrperf/internal/domain/progress"
	"hrperf/internal/platform/idempotency"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type Handler struct {
	Goals *progress.Service
	KPIs  *kpi.Service
	Keys  idempotency.Store
}

func NewHandler(goals *progress.Service, kpis *kpi.Service, keys idempotency.Store) *Handler {
	return &Handler{Goals: goals, KPIs: kpis, Keys: keys}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.handleListGoals)
		r.With(middleware.Idempotent(h.Keys, "goals.create")).Post("/", h.handleCreateGoal)
		r.Get("/{goalID}", h.handleGetGoal)
		r.Put("/{goalID}", h.handleUpdateGoal)
		r.Delete("/{goalID}", h.handleDeleteGoal)
		r.Patch("/{goalID}/progress", h.handleRecordProgress)
	})
	r.Route("/kpis", func(r chi.Router) {
		r.Get("/", h.handleListKPIs)
		r.Post("/", h.handleCreateKPI)
		r.Get("/employee/{employeeID}", h.handleEmployeeKPIs)
		r.Get("/{kpiID}", h.handleGetKPI)
		r.Put("/{kpiID}", h.handleUpdateKPI)
		r.Delete("/{kpiID}", h.handleDeleteKPI)
	})
}

type goalRequest struct {
	EmployeeID  string          `json:"employeeId"`
	ReviewerID  string          `json:"reviewerId"`
	ReviewID    string          `json:"reviewId"`
	KPIID       string          `json:"linkedKpiId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	Cycle       progress.Cycle  `json:"cycle"`
	IsPrivate   bool            `json:"isPrivate"`
	TargetDate  string          `json:"targetDate"`
	Progress    float64         `json:"progress"`
	Status      progress.Status `json:"status"`
}

type goalPatchRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Notes       *string          `json:"notes"`
	Cycle       *progress.Cycle  `json:"cycle"`
	IsPrivate   *bool            `json:"isPrivate"`
	TargetDate  *string          `json:"targetDate"`
	ReviewerID  *string          `json:"reviewerId"`
	KPIID       *string          `json:"linkedKpiId"`
	Progress    *float64         `json:"progress"`
	Status      *progress.Status `json:"status"`
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	api.FailError(w, err, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := progress.Filter{
		EmployeeID: q.Get("employeeId"),
		ReviewerID: q.Get("reviewerId"),
		ReviewID:   q.Get("reviewId"),
		Status:     progress.Status(q.Get("status")),
	}
	items, err := h.Goals.List(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload goalRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := progress.CreateInput{
		EmployeeID:  payload.EmployeeID,
		ReviewerID:  payload.ReviewerID,
		ReviewID:    payload.ReviewID,
		KPIID:       payload.KPIID,
		Title:       payload.Title,
		Description: payload.Description,
		Notes:       payload.Notes,
		Cycle:       payload.Cycle,
		IsPrivate:   payload.IsPrivate,
		TargetDate:  shared.OptionalDate(v, "targetDate", payload.TargetDate),
		Progress:    payload.Progress,
		Status:      payload.Status,
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	created, err := h.Goals.Create(r.Context(), actor, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	goal, err := h.Goals.Get(r.Context(), actor, chi.URLParam(r, "goalID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, goal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload goalPatchRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	patch := progress.PatchInput{
		Title:       payload.Title,
		Description: payload.Description,
		Notes:       payload.Notes,
		Cycle:       payload.Cycle,
		IsPrivate:   payload.IsPrivate,
		ReviewerID:  payload.ReviewerID,
		KPIID:       payload.KPIID,
		Progress:    payload.Progress,
		Status:      payload.Status,
	}
	if payload.TargetDate != nil {
		target := shared.DateField(v, "targetDate", *payload.TargetDate, true)
		patch.TargetDate = &target
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.Goals.Update(r.Context(), actor, chi.URLParam(r, "goalID"), patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	if err := h.Goals.Delete(r.Context(), actor, chi.URLParam(r, "goalID")); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload progress.RecordInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Goals.RecordProgress(r.Context(), actor, chi.URLParam(r, "goalID"), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
