package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecureHeadersAddHSTSOnlyInProduction(t *testing.T) {
	dev := serve(SecureHeaders(false)(noContent), httptest.NewRequest(http.MethodGet, "/reviews", nil))
	if dev.Header().Get("X-Frame-Options") != "DENY" || dev.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing base headers: %v", dev.Header())
	}
	if dev.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("hsts set outside production")
	}
	prod := serve(SecureHeaders(true)(noContent), httptest.NewRequest(http.MethodGet, "/reviews", nil))
	if prod.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("hsts missing in production")
	}
}

func TestBodyLimitCapsWriteMethods(t *testing.T) {
	var readErr error
	read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})
	h := BodyLimit(8)(read)

	serve(h, httptest.NewRequest(http.MethodPost, "/reviews/r1/checkin", strings.NewReader(`{"comments":"long"}`)))
	if readErr == nil {
		t.Fatalf("oversized POST body was read in full")
	}
	serve(h, httptest.NewRequest(http.MethodGet, "/reviews", strings.NewReader(`{"comments":"long"}`)))
	if readErr != nil {
		t.Fatalf("GET body should not be capped: %v", readErr)
	}
}
