package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrperf/internal/domain/identity"
	"hrperf/internal/platform/idempotency"
)

func TestIdempotentReplaysStoredResponse(t *testing.T) {
	store := idempotency.NewMemoryStore()
	calls := 0
	handler := Idempotent(store, "checkin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"n":1}}`))
	}))
	actor := identity.Actor{ID: "e1", Role: identity.RoleEmployee, Active: true}

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/r1/checkin", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "k1")
		req = req.WithContext(WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"a":1}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	second := send(`{"a":1}`)
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay, got %d %v", second.Code, second.Header())
	}
	if second.Body.String() != `{"data":{"n":1}}` {
		t.Fatalf("unexpected replay body %q", second.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}

	conflict := send(`{"a":2}`)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", conflict.Code)
	}
}

func TestIdempotentSkipsFailedResponses(t *testing.T) {
	store := idempotency.NewMemoryStore()
	calls := 0
	handler := Idempotent(store, "goals")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "k1")
		req = req.WithContext(WithActor(req.Context(), identity.Actor{ID: "e1"}))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected failed responses to run again, ran %d times", calls)
	}
}
