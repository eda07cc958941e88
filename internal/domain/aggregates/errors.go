package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies why a batch job write failed.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeInvalidTransition  ErrorCode = "invalid_transition"
	CodeSequenceLookup     ErrorCode = "sequence_lookup"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeStore              ErrorCode = "store"
	CodeInternal           ErrorCode = "internal"
)

// Temporary reports whether repeating the same call may succeed.
func (c ErrorCode) Temporary() bool {
	return c == CodeRetryable || c == CodeConflict
}

// CallerFault reports whether the request itself was wrong for the current job state.
func (c ErrorCode) CallerFault() bool {
	switch c {
	case CodeValidation, CodeInvalidTransition, CodeSequenceLookup, CodeNotFound, CodePreconditionFailed:
		return true
	default:
		return false
	}
}

// Error is returned by every aggregate write.
// Message is caller-facing and kept verbatim; Op names the failing operation.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Message != "" {
			b.WriteString(": ")
		} else {
			b.WriteString(" ")
		}
	}
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteString(" ")
	}
	if b.Len() == 0 {
		return string(e.Code)
	}
	fmt.Fprintf(&b, "(%s)", e.Code)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap classifies err under code, using err's text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && errors.Is(err, &Error{Code: code})
}

// CodeOf returns the outermost aggregate code in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// MessageOf returns the caller-facing message, falling back to err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var aggErr *Error
	if errors.As(err, &aggErr) && aggErr.Message != "" {
		return aggErr.Message
	}
	return err.Error()
}
