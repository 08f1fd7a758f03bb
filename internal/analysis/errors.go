package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies analysis failures so callers can branch without matching
// on messages.
type Kind string

const (
	KindMissingParameters     Kind = "missing_parameters"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindCapabilityTimeout     Kind = "capability_timeout"
	KindCapabilityError       Kind = "capability_error"
	KindMalformedModelOutput  Kind = "malformed_model_output"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrMissingParameters     = &Error{Kind: KindMissingParameters}
	ErrCapabilityUnavailable = &Error{Kind: KindCapabilityUnavailable}
	ErrCapabilityTimeout     = &Error{Kind: KindCapabilityTimeout}
	ErrCapabilityError       = &Error{Kind: KindCapabilityError}
	ErrMalformedModelOutput  = &Error{Kind: KindMalformedModelOutput}
)

// Error is the tagged failure returned by every analysis operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or "" when err is not an analysis
// error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func missing(op, format string, args ...any) *Error {
	return newError(KindMissingParameters, op, fmt.Errorf(format, args...))
}
