package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hrperf/internal/domain/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindIdentity:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPartialFailure:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// FailError writes err as an error envelope. Internal errors are logged and
// reported without their message.
func FailError(w http.ResponseWriter, err error, requestID string) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("request failed", "requestId", requestID, "err", err)
		Fail(w, http.StatusInternalServerError, string(apperr.KindInternal), "internal server error", requestID)
		return
	}
	FailWithDetails(w, StatusFor(e.Kind), string(e.Kind), e.Message, details(e), requestID)
}

// Partial writes a 207 carrying both the result and the failures.
func Partial(w http.ResponseWriter, data any, err error, requestID string) {
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindPartialFailure {
		FailError(w, err, requestID)
		return
	}
	WriteJSON(w, http.StatusMultiStatus, Envelope{
		Success:   false,
		Data:      data,
		Error:     &Error{Code: string(e.Kind), Message: e.Message, Details: details(e)},
		RequestID: requestID,
	})
}

func details(e *apperr.Error) any {
	out := map[string]any{}
	if e.Reason != "" {
		out["reason"] = e.Reason
	}
	if e.State != "" {
		out["state"] = e.State
	}
	if len(e.Fields) > 0 {
		out["fields"] = e.Fields
	}
	if e.Details != nil {
		out["failures"] = e.Details
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
