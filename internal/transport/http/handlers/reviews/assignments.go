package reviewshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type periodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type assignRequest struct {
	TemplateID   string        `json:"templateId"`
	EmployeeID   string        `json:"employeeId"`
	ReviewerID   string        `json:"reviewerId"`
	DueDate      string        `json:"dueDate"`
	ReviewPeriod periodRequest `json:"reviewPeriod"`
	Notes        string        `json:"notes"`
}

type assignmentPatchRequest struct {
	DueDate *string `json:"dueDate"`
	Notes   *string `json:"notes"`
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := workflow.AssignmentFilter{
		EmployeeID: q.Get("employeeId"),
		ReviewerID: q.Get("reviewerId"),
		TemplateID: q.Get("templateId"),
	}
	for _, status := range splitList(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, workflow.AssignmentStatus(status))
	}
	v := apperr.NewValidator()
	filter.DueBefore = shared.OptionalDate(v, "dueBefore", q.Get("dueBefore"))
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	items, err := h.Service.ListAssignments(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload assignRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := workflow.AssignInput{
		TemplateID: payload.TemplateID,
		EmployeeID: payload.EmployeeID,
		ReviewerID: payload.ReviewerID,
		DueDate:    shared.DateField(v, "dueDate", payload.DueDate, false),
		ReviewPeriod: workflow.Period{
			Start: shared.DateField(v, "reviewPeriod.start", payload.ReviewPeriod.Start, false),
			End:   shared.DateField(v, "reviewPeriod.end", payload.ReviewPeriod.End, false),
		},
		Notes: payload.Notes,
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	created, err := h.Service.Assign(r.Context(), actor, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	a, err := h.Service.GetAssignment(r.Context(), actor, chi.URLParam(r, "assignmentID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload assignmentPatchRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	patch := workflow.AssignmentPatch{Notes: payload.Notes}
	if payload.DueDate != nil {
		due := shared.DateField(v, "dueDate", *payload.DueDate, true)
		patch.DueDate = &due
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.Service.UpdateAssignment(r.Context(), actor, chi.URLParam(r, "assignmentID"), patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteAssignment(r.Context(), actor, chi.URLParam(r, "assignmentID")); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleStartAssignment returns the review the assignment started. Repeating
// the call returns the same review.
func (h *Handler) handleStartAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	review, err := h.Service.Start(r.Context(), actor, chi.URLParam(r, "assignmentID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	a, err := h.Service.Cancel(r.Context(), actor, chi.URLParam(r, "assignmentID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	a, err := h.Service.CompleteAssignment(r.Context(), actor, chi.URLParam(r, "assignmentID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}
