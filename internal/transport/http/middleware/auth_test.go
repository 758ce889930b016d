package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

type stubVerifier map[string]identity.Claims

func (s stubVerifier) Verify(raw string) (identity.Claims, error) {
	claims, ok := s[raw]
	if !ok {
		return identity.Claims{}, apperr.Identity("invalid token")
	}
	return claims, nil
}

type stubResolver map[string]identity.Actor

func (s stubResolver) ActorFor(ctx context.Context, claims identity.Claims) (identity.Actor, error) {
	actor, ok := s[claims.UserID]
	if !ok || !actor.Active {
		return identity.Actor{}, apperr.Identity("principal does not exist")
	}
	return actor, nil
}

func authFixture() func(http.Handler) http.Handler {
	tokens := stubVerifier{
		"good":    {UserID: "u1", Role: "manager"},
		"retired": {UserID: "u2", Role: "employee"},
	}
	actors := stubResolver{
		"u1": {ID: "u1", Role: identity.RoleManager, Active: true},
		"u2": {ID: "u2", Role: identity.RoleEmployee, Active: false},
	}
	return Auth(tokens, actors)
}

func TestAuthMiddlewareSetsActor(t *testing.T) {
	called := false
	handler := authFixture()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		actor, ok := GetActor(r.Context())
		if !ok {
			t.Fatal("expected actor in context")
		}
		if actor.ID != "u1" || actor.Role != identity.RoleManager {
			t.Fatalf("unexpected actor: %+v", actor)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := authFixture()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetActor(r.Context()); ok {
			t.Fatal("did not expect actor in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	cases := map[string]string{
		"unknown token":   "Bearer forged",
		"malformed":       "Token good",
		"inactive actor":  "Bearer retired",
		"missing payload": "Bearer",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			handler := authFixture()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireActorAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	cases := []struct {
		name    string
		handler http.Handler
		actor   *identity.Actor
		want    int
	}{
		{"actor anonymous", RequireActor(ok), nil, http.StatusUnauthorized},
		{"actor present", RequireActor(ok), &identity.Actor{ID: "e1", Role: identity.RoleEmployee}, http.StatusNoContent},
		{"admin anonymous", RequireAdmin(ok), nil, http.StatusUnauthorized},
		{"admin as manager", RequireAdmin(ok), &identity.Actor{ID: "m1", Role: identity.RoleManager}, http.StatusForbidden},
		{"admin as superadmin", RequireAdmin(ok), &identity.Actor{ID: "s1", Role: identity.RoleSuperAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			tc.handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
