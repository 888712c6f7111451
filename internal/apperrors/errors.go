package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the top level has to react to it
type Kind string

const (
	// KindConfig covers environment, flag and history file problems. These
	// are raised before the terminal is touched, so no cleanup is needed.
	KindConfig Kind = "config"

	// KindTerminal covers failures while the terminal is (or is being put)
	// in raw mode. The top level always attempts restoration for these.
	KindTerminal Kind = "terminal"
)

// Error is an application error carrying its kind and the failing operation
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// Config creates a configuration error
func Config(op, message string, cause error) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: message, Cause: cause}
}

// Configf creates a configuration error with a formatted message and no cause
func Configf(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Terminal creates a terminal I/O error
func Terminal(op, message string, cause error) *Error {
	return &Error{Kind: KindTerminal, Op: op, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
