package reviewshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/workflow"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	filter := workflow.TemplateFilter{Status: workflow.TemplateStatus(r.URL.Query().Get("status"))}
	items, err := h.Service.ListTemplates(r.Context(), actor, filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, shared.Page(w, items, shared.ParsePagination(r, 100, 500)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload workflow.TemplateInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.Service.CreateTemplate(r.Context(), actor, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	tpl, err := h.Service.GetTemplate(r.Context(), actor, chi.URLParam(r, "templateID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, tpl, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	var payload workflow.TemplateInput
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Service.UpdateTemplate(r.Context(), actor, chi.URLParam(r, "templateID"), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteTemplate(r.Context(), actor, chi.URLParam(r, "templateID")); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
