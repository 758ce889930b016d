package shared

import (
	"net/http"

	"hrperf/internal/domain/identity"
	"hrperf/internal/requestctx"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
)

// Actor returns the authenticated actor or writes a 401.
func Actor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "identity_error", "authentication required", requestctx.GetRequestID(r.Context()))
	}
	return actor, ok
}
