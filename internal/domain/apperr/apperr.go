// Package apperr holds the typed error values returned by the domain services.
// The transport layer maps Kind to a status code; nothing here knows about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindIdentity          Kind = "identity_error"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation_error"
	KindPartialFailure    Kind = "partial_failure"
	KindInternal          Kind = "internal"
)

const (
	ReasonInsufficientRole     = "InsufficientRole"
	ReasonNotOwner             = "NotOwner"
	ReasonRoleEscalationDenied = "RoleEscalationDenied"
)

type Error struct {
	Kind    Kind
	Message string
	// Reason is set for forbidden errors.
	Reason string
	// State is the current state of the entity for invalid transitions.
	State   string
	Fields  []FieldIssue
	Details any
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Reason)
	case e.State != "":
		return fmt.Sprintf("%s: %s (state %s)", e.Kind, e.Message, e.State)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func Identity(message string) *Error {
	return &Error{Kind: KindIdentity, Message: message}
}

func Forbidden(reason, message string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason, Message: message}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func InvalidTransition(entity, state, attempted string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot %s %s in state %s", attempted, entity, state),
		State:   state,
	}
}

func Validation(issues ...FieldIssue) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: issues}
}

func PartialFailure(message string, details any) *Error {
	return &Error{Kind: KindPartialFailure, Message: message, Details: details}
}

// As unwraps err into an *Error when one is present in the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
