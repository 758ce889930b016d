package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/reports"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/jobs"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Service   *reports.Service
	Jobs      *jobs.Service
	Reminders *jobs.Reminders
	Retention *jobs.Retention
}

func NewHandler(service *reports.Service, jobsSvc *jobs.Service, reminders *jobs.Reminders, retention *jobs.Retention) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Reminders: reminders, Retention: retention}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/assignments.xlsx", h.handleAssignmentWorkbook)
	})
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/runs", h.handleListRuns)
		r.Post("/overdue-reminders/run", h.handleRunReminders)
		r.Post("/retention/run", h.handleRunRetention)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	dash, err := h.Service.Dashboard(r.Context(), actor)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dash, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssignmentWorkbook(w http.ResponseWriter, r *http.Request) {
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
	if status := q.Get("status"); status != "" {
		filter.Statuses = []workflow.AssignmentStatus{workflow.AssignmentStatus(status)}
	}
	v := apperr.NewValidator()
	filter.DueBefore = shared.OptionalDate(v, "dueBefore", q.Get("dueBefore"))
	if err := v.Err(); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	buf, err := h.Service.AssignmentWorkbook(r.Context(), actor, filter)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=assignments.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.Jobs.Runs(r.Context(), r.URL.Query().Get("jobType"), limit)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunReminders(w http.ResponseWriter, r *http.Request) {
	details, err := h.Jobs.RunNow(r.Context(), jobs.JobOverdueReminders, h.Reminders.Run)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunRetention(w http.ResponseWriter, r *http.Request) {
	details, err := h.Jobs.RunNow(r.Context(), jobs.JobRetention, h.Retention.Run)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}
