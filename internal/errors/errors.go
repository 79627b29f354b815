// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so commands can pick the right hint for a failed join
// without parsing error strings.
//
// Wrapped errors keep their cause reachable through errors.Is and errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// BackendUnreachable indicates the lobby backend could not be contacted.
	BackendUnreachable Kind = "backend_unreachable"
	// JoinRejected indicates the lobby answered with a non-success response.
	JoinRejected Kind = "join_rejected"
	// InvalidResponse indicates the lobby answered with a payload we cannot decode.
	InvalidResponse Kind = "invalid_response"
	// StoreFailed indicates the session store could not be written.
	StoreFailed Kind = "store_failed"
	// ConfigInvalid indicates a configuration value is missing or unknown.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	// Status carries the remote status code for JoinRejected, when known.
	Status int
	Err    error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Rejected builds a JoinRejected error carrying the remote status.
func Rejected(status int, msg string) *E {
	return &E{Kind: JoinRejected, Message: msg, Status: status}
}

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
