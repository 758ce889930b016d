package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/requestctx"
	"hrperf/internal/transport/http/api"
)

// DateField parses raw as a date and records an issue on v when it is not one.
// An empty value records an issue only when required.
func DateField(v *apperr.Validator, field, raw string, required bool) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			v.Add(field, "is required")
		}
		return time.Time{}
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}
	}
	return parsed
}

// OptionalDate parses raw into a pointer, leaving nil for an empty value.
func OptionalDate(v *apperr.Validator, field, raw string) *time.Time {
	t := DateField(v, field, raw, false)
	if t.IsZero() {
		return nil
	}
	return &t
}

// DecodeJSON reads the request body into dst and writes a 400 when it cannot.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	requestID := requestctx.GetRequestID(r.Context())
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return false
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	return false
}
