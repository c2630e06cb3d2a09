// Package errorx defines the business error type shared by all layers.
package errorx

import (
	"errors"
	"fmt"
)

// CodeError is an error carrying a business code.
// It supports %w-style wrapping and is recognized by errors.Is/errors.As.
type CodeError struct {
	Code  int
	Msg   string
	cause error
}

// Error implements the error interface. When a cause is present the
// message is rendered as "msg: cause".
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New creates a CodeError without a cause.
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

// Newf creates a CodeError with a formatted message.
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a business code and message to an underlying error.
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...), cause: err}
}

// GetCode extracts the business code from an error chain.
// Non-CodeError errors degrade to CodeServerBusy.
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Business codes. The handler layer maps these to HTTP statuses.
const (
	CodeSuccess      = 1000
	CodeInvalidParam = 1001 // malformed, empty or oversized input
	CodeServerBusy   = 1005 // transient store contention, caller should retry
	CodeUnauthorized = 1006 // missing or invalid token
	CodeForbidden    = 1007 // authenticated but not a member / not the author
	CodeNotFound     = 1008
	CodeConflict     = 1009 // unique-constraint hit on a non-idempotent path
	CodeDBError      = 1010
	CodeCacheError   = 1011
	CodeGone         = 1012 // exhausted or expired invite
)

// Predefined instances for the common cases. Usable directly as return
// values and as errors.Is targets.
var (
	ErrInvalidParam = New(CodeInvalidParam, "invalid request parameter")
	ErrServerBusy   = New(CodeServerBusy, "server busy, try again later")
	ErrForbidden    = New(CodeForbidden, "forbidden")
	ErrNotFound     = New(CodeNotFound, "resource not found")
)

// IsNotFound reports whether err carries CodeNotFound anywhere in its chain.
func IsNotFound(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeNotFound
}

// IsForbidden reports whether err carries CodeForbidden.
func IsForbidden(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeForbidden
}
