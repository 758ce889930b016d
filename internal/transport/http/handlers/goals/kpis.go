package goalshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/kpi"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type kpiRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     kpi.Category `json:"category"`
	Target       string       `json:"target"`
	TargetValue  *float64     `json:"targetValue"`
	Unit         string       `json:"unit"`
	Frequency    string       `json:"frequency"`
	DepartmentID string       `json:"departmentId"`
	IsGlobal     bool         `json:"isGlobal"`
	StartDate    string       `json:"startDate"`
	EndDate      string       `json:"endDate"`
	Status       kpi.Status   `json:"status"`
}

func (p kpiRequest) input(v *apperr.Validator) kpi.Input {
	return kpi.Input{
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		Target:       p.Target,
		TargetValue:  p.TargetValue,
		Unit:         p.Unit,
		Frequency:    p.Frequency,
		DepartmentID: p.DepartmentID,
		IsGlobal:     p.IsGlobal,
		StartDate:    shared.OptionalDate(v, "startDate", p.StartDate),
		EndDate:      shared.OptionalDate(v, "endDate", p.EndDate),
		Status:       p.Status,
	}
}

func (h *Handler) handleListKPIs(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := kpi.Filter{
		DepartmentID:  q.Get("departmentId"),
		IncludeGlobal: q.Get("includeGlobal") != "false",
		Category:      kpi.Category(q.Get("category")),
		Status:        kpi.Status(q.Get("status")),
	}
	items, err := h.KPIs.List(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateKPI(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload kpiRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := payload.input(v)
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	created, err := h.KPIs.Create(r.Context(), actor, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

// handleEmployeeKPIs lists the KPIs that apply to one employee: global ones
// plus those of the employee's department.
func (h *Handler) handleEmployeeKPIs(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	items, err := h.KPIs.ListForEmployee(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetKPI(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	item, err := h.KPIs.Get(r.Context(), actor, chi.URLParam(r, "kpiID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateKPI(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload kpiRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := payload.input(v)
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.KPIs.Update(r.Context(), actor, chi.URLParam(r, "kpiID"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteKPI(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	if err := h.KPIs.Delete(r.Context(), actor, chi.URLParam(r, "kpiID")); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
