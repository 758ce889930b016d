package reviewshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type createReviewRequest struct {
	EmployeeID string            `json:"employeeId"`
	ReviewType string            `json:"reviewType"`
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	TemplateID string            `json:"templateId"`
	Features   workflow.Features `json:"features"`
	GoalIDs    []string          `json:"goals"`
}

type acknowledgeRequest struct {
	Comments         string `json:"comments"`
	EmployeeComments string `json:"employeeComments"`
}

type checkInRequest struct {
	Date             string                  `json:"date"`
	Goals            []workflow.SnapshotGoal `json:"goals"`
	KPIs             []workflow.SnapshotKPI  `json:"kpis"`
	ManagerComments  string                  `json:"managerComments"`
	EmployeeComments string                  `json:"employeeComments"`
	NextCheckInDate  string                  `json:"nextCheckInDate"`
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := workflow.ReviewFilter{
		EmployeeID: q.Get("employeeId"),
		ReviewerID: q.Get("reviewerId"),
		Status:     workflow.ReviewStatus(q.Get("status")),
		ReviewType: q.Get("reviewType"),
	}
	items, err := h.Service.ListReviews(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload createReviewRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := workflow.CreateReviewInput{
		EmployeeID: payload.EmployeeID,
		ReviewType: payload.ReviewType,
		StartDate:  shared.DateField(v, "startDate", payload.StartDate, false),
		EndDate:    shared.DateField(v, "endDate", payload.EndDate, false),
		TemplateID: payload.TemplateID,
		Features:   payload.Features,
		GoalIDs:    payload.GoalIDs,
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	created, err := h.Service.CreateReview(r.Context(), actor, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.Stats(r.Context(), actor)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	review, err := h.Service.GetReview(r.Context(), actor, chi.URLParam(r, "reviewID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEditReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload workflow.ReviewEdit
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	review, err := h.Service.EditReview(r.Context(), actor, chi.URLParam(r, "reviewID"), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteReview(r.Context(), actor, chi.URLParam(r, "reviewID")); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	review, err := h.Service.SubmitReview(r.Context(), actor, chi.URLParam(r, "reviewID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	review, err := h.Service.CompleteReview(r.Context(), actor, chi.URLParam(r, "reviewID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAcknowledgeReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload acknowledgeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	comments := payload.EmployeeComments
	if comments == "" {
		comments = payload.Comments
	}
	review, err := h.Service.AcknowledgeReview(r.Context(), actor, chi.URLParam(r, "reviewID"), comments)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

// handleCheckIn answers 207 when the snapshot was stored but some goal
// updates were not applied.
func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload checkInRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := apperr.NewValidator()
	in := workflow.CheckInInput{
		Date:             shared.OptionalDate(v, "date", payload.Date),
		Goals:            payload.Goals,
		KPIs:             payload.KPIs,
		ManagerComments:  payload.ManagerComments,
		EmployeeComments: payload.EmployeeComments,
		NextCheckInDate:  shared.OptionalDate(v, "nextCheckInDate", payload.NextCheckInDate),
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	result, err := h.Service.CheckIn(r.Context(), actor, chi.URLParam(r, "reviewID"), in)
	if apperr.Is(err, apperr.KindPartialFailure) {
		api.Partial(w, result, err, middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	reviewID := chi.URLParam(r, "reviewID")
	buf, err := h.PDF.ReviewPDF(r.Context(), actor, reviewID)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=review-"+reviewID+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
