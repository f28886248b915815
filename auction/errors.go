package auction

import (
	"errors"
	"fmt"
)

// Kind classifies every failure an engine operation can return. Callers
// branch on the kind, not on error strings.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindNotActive         Kind = "not_active"
	KindAlreadyEnded      Kind = "already_ended"
	KindNotEligible       Kind = "not_eligible"
	KindAlreadyPassed     Kind = "already_passed"
	KindBidTooLow         Kind = "bid_too_low"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindPersistence       Kind = "persistence"
	KindConflict          Kind = "conflict"
	KindInvalid           Kind = "invalid"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or empty for nil / foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
