package reviewshandler

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/idempotency"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
)

// PDFRenderer renders a single review as a PDF document.
type PDFRenderer interface {
	ReviewPDF(ctx context.Context, actor identity.Actor, reviewID string) (*bytes.Buffer, error)
}

type Handler struct {
	Service *workflow.Service
	PDF     PDFRenderer
	Keys    idempotency.Store
}

func NewHandler(service *workflow.Service, pdf PDFRenderer, keys idempotency.Store) *Handler {
	return &Handler{Service: service, PDF: pdf, Keys: keys}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/review-templates", func(r chi.Router) {
		r.Get("/", h.handleListTemplates)
		r.Post("/", h.handleCreateTemplate)
		r.Get("/{templateID}", h.handleGetTemplate)
		r.Put("/{templateID}", h.handleUpdateTemplate)
		r.Delete("/{templateID}", h.handleDeleteTemplate)
	})
	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", h.handleListAssignments)
		r.With(middleware.Idempotent(h.Keys, "assignments.create")).Post("/", h.handleCreateAssignment)
		r.Get("/{assignmentID}", h.handleGetAssignment)
		r.Put("/{assignmentID}", h.handleUpdateAssignment)
		r.Delete("/{assignmentID}", h.handleDeleteAssignment)
		r.Post("/{assignmentID}/start", h.handleStartAssignment)
		r.Post("/{assignmentID}/cancel", h.handleCancelAssignment)
		r.Post("/{assignmentID}/complete", h.handleCompleteAssignment)
	})
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.handleListReviews)
		r.With(middleware.Idempotent(h.Keys, "reviews.create")).Post("/", h.handleCreateReview)
		r.Get("/stats", h.handleStats)
		r.Get("/{reviewID}", h.handleGetReview)
		r.Put("/{reviewID}", h.handleEditReview)
		r.Delete("/{reviewID}", h.handleDeleteReview)
		r.Put("/{reviewID}/submit", h.handleSubmitReview)
		r.Put("/{reviewID}/complete", h.handleCompleteReview)
		r.Put("/{reviewID}/acknowledge", h.handleAcknowledgeReview)
		r.With(middleware.Idempotent(h.Keys, "reviews.checkin")).Post("/{reviewID}/checkin", h.handleCheckIn)
		r.Get("/{reviewID}/pdf", h.handleReviewPDF)
	})
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	api.FailError(w, err, middleware.GetRequestID(r.Context()))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
