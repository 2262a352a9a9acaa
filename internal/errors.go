package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure per spec.md §7, so callers can decide whether
// it's fatal (Config, Internal) or skip-and-continue (IO, Decode, Rule).
type Kind string

const (
	KindConfig   Kind = "config"
	KindIO       Kind = "io"
	KindDecode   Kind = "decode"
	KindRule     Kind = "rule"
	KindInternal Kind = "internal"
)

// Error wraps a cause with a Kind so it can be inspected for policy
// (abort vs. log-and-skip) without string matching, while still carrying
// a stack trace from the wrapped cause for diagnostics.
type Error struct {
	Kind  Kind
	cause error
}

func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: errors.WithStack(cause)}
}

func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.WithStack(fmt.Errorf(format, args...))}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Fatal reports whether an error of this kind must abort the run rather
// than be logged and skipped.
func (e *Error) Fatal() bool {
	return e.Kind == KindConfig || e.Kind == KindInternal
}
