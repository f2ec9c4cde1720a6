// Package cmderr classifies the errors that reach the command boundary.
//
// Every failure in loggraph is fatal; the kind only decides how the error is
// reported and which exit status the process returns.
package cmderr

import (
	"errors"
	"fmt"
)

// Kind is the category of a command error.
type Kind int

const (
	KindUnknown Kind = iota
	KindUsage
	KindConfig
	KindTemplateCompile
	KindTemplateRender
	KindStore
	KindDrawer
	KindIO
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindConfig:
		return "config"
	case KindTemplateCompile:
		return "template-compile"
	case KindTemplateRender:
		return "template-render"
	case KindStore:
		return "store"
	case KindDrawer:
		return "drawer"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause. An empty format keeps the cause's message as is.
// Wrapping an already classified error keeps its original kind.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	var existing *Error
	if errors.As(cause, &existing) && existing.Kind != KindUnknown {
		if format == "" {
			return cause
		}
		return &Error{Kind: existing.Kind, Message: fmt.Sprintf(format, args...), Cause: cause}
	}
	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Usage reports a command-line usage error.
func Usage(format string, args ...any) *Error {
	return New(KindUsage, format, args...)
}

// Config reports a bad or missing setting.
func Config(format string, args ...any) *Error {
	return New(KindConfig, format, args...)
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindUsage:
		return 2
	case KindDrawer:
		return 255
	default:
		return 1
	}
}

// IsInternal reports whether err is a broken internal contract rather than bad input.
func IsInternal(err error) bool {
	return Is(err, KindDrawer)
}
