package orghandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/org"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type Handler struct {
	Service *org.Service
}

func NewHandler(service *org.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Get("/{employeeID}", h.handleGetEmployee)
		r.Get("/{employeeID}/reports", h.handleDirectReports)
		r.Patch("/{employeeID}/role", h.handleChangeRole)
		r.Post("/{employeeID}/deactivate", h.handleDeactivate)
	})
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.Post("/", h.handleCreateDepartment)
		r.Patch("/{departmentID}/manager", h.handleSetManager)
	})
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	api.FailError(w, err, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := identity.ActorFilter{
		Role:         identity.Role(q.Get("role")),
		DepartmentID: q.Get("departmentId"),
		ManagedBy:    q.Get("managedBy"),
		ActiveOnly:   q.Get("includeInactive") != "true",
	}
	items, err := h.Service.ListEmployees(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload org.EmployeeInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.Service.CreateEmployee(r.Context(), actor, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	employee, err := h.Service.GetEmployee(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDirectReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	items, err := h.Service.DirectReports(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload struct {
		Role identity.Role `json:"role"`
	}
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Service.ChangeRole(r.Context(), actor, chi.URLParam(r, "employeeID"), payload.Role)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Deactivate(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.Actor(w, r); !ok {
		return
	}
	items, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.Service.CreateDepartment(r.Context(), actor, payload.Name, payload.Description)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetManager(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload struct {
		ManagerID string `json:"managerId"`
	}
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Service.SetDepartmentHead(r.Context(), actor, chi.URLParam(r, "departmentID"), payload.ManagerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
