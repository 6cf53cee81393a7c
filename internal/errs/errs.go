// Package errs implements this console's error-kind taxonomy:
// PatchError, LookupError, ChannelValueError, RuntimeError, UpdateError,
// and IOError, each optionally wrapping an underlying cause with
// pkg/errors; Unwrap exposes that cause to errors.Is and errors.As.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the six error kinds the console's operations raise.
type Kind string

const (
	// KindPatch covers overlapping patch addresses and unknown fixture types.
	KindPatch Kind = "patch"
	// KindLookup covers missing fixtures, presets, sequences, or cues.
	KindLookup Kind = "lookup"
	// KindChannelValue covers a value tree that can't convert to a DMX word
	// (e.g. a DiscreteSet naming a non-existent channel set).
	KindChannelValue Kind = "channel_value"
	// KindRuntime covers sequence/effect runtime precondition violations.
	KindRuntime Kind = "runtime"
	// KindUpdate covers user-command failures (e.g. recording over an
	// existing preset without update=true).
	KindUpdate Kind = "update"
	// KindIO covers output-worker transport failures.
	KindIO Kind = "io"
)

// Error is a typed, kind-tagged error. Use errors.As to recover the Kind,
// or errors.Is/errors.Unwrap to reach the wrapped cause. Error has no Cause
// method, so pkg/errors.Cause stops at the Error itself.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the cause.
func (e *Error) Unwrap() error { return e.cause }

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause with pkg/errors so
// stack context is preserved.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.Wrap(cause, message)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Patch, Lookup, ChannelValue, Runtime, Update, and IO are constructors
// for the six kinds, named for call-site readability.

func Patch(format string, args ...any) *Error {
	return New(KindPatch, fmt.Sprintf(format, args...))
}

func Lookup(format string, args ...any) *Error {
	return New(KindLookup, fmt.Sprintf(format, args...))
}

func ChannelValue(format string, args ...any) *Error {
	return New(KindChannelValue, fmt.Sprintf(format, args...))
}

func Runtime(format string, args ...any) *Error {
	return New(KindRuntime, fmt.Sprintf(format, args...))
}

func Update(format string, args ...any) *Error {
	return New(KindUpdate, fmt.Sprintf(format, args...))
}

func IO(cause error, format string, args ...any) *Error {
	return Wrap(KindIO, cause, fmt.Sprintf(format, args...))
}
