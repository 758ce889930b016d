package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrperf/internal/domain/identity"
	"hrperf/internal/transport/http/api"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

type TokenVerifier interface {
	Verify(raw string) (identity.Claims, error)
}

type ActorResolver interface {
	ActorFor(ctx context.Context, claims identity.Claims) (identity.Actor, error)
}

// Auth resolves a bearer token into the acting identity. Requests without a
// token pass through anonymous; a token that fails verification or resolves
// to no active actor is rejected with 401.
func Auth(tokens TokenVerifier, actors ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				api.Fail(w, http.StatusUnauthorized, "identity_error", "malformed authorization header", GetRequestID(r.Context()))
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				api.FailError(w, err, GetRequestID(r.Context()))
				return
			}
			actor, err := actors.ActorFor(r.Context(), claims)
			if err != nil {
				api.FailError(w, err, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func GetActor(ctx context.Context) (identity.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(identity.Actor)
	return actor, ok
}
