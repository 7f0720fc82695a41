// Package fault defines the error taxonomy shared by every module. Each
// rejected operation carries exactly one code so the HTTP edge can map it to
// a status without guessing. Because the service container flattens errors to
// strings between modules, the code doubles as a stable message prefix and
// CodeOf can recover it on the far side of a container call.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a rejected operation.
type Code string

const (
	// CodeAuthentication means no resolvable actor; the caller must
	// re-authenticate.
	CodeAuthentication Code = "authentication"
	// CodeAuthorization means the resolved actor lacks permission; no
	// partial effect occurred.
	CodeAuthorization Code = "authorization"
	// CodeValidation means malformed input, rejected before any persistence.
	CodeValidation Code = "validation"
	// CodeNotFound means a referenced record does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict means a uniqueness clash or a storage failure that rolled
	// the whole operation back; the identical call is safe to retry.
	CodeConflict Code = "conflict"
)

// Error is a taxonomy error. Message is safe to show to callers.
type Error struct {
	Code    Code
	Message string
}

// Error renders the "<code>: <message>" wire form.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches any *Error carrying the same code, so sentinel faults work with
// errors.Is across wrapping.
func (e *Error) Is(target error) bool {
	var fe *Error
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Code == e.Code && (fe.Message == "" || fe.Message == e.Message)
}

// New creates a fault with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a fault with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Authentication creates an authentication fault.
func Authentication(message string) *Error { return New(CodeAuthentication, message) }

// Authorization creates an authorization fault.
func Authorization(message string) *Error { return New(CodeAuthorization, message) }

// Validation creates a validation fault.
func Validation(message string) *Error { return New(CodeValidation, message) }

// NotFound creates a not-found fault.
func NotFound(message string) *Error { return New(CodeNotFound, message) }

// Conflict creates a conflict fault.
func Conflict(message string) *Error { return New(CodeConflict, message) }

// CodeOf extracts the taxonomy code from err. It first unwraps for a typed
// *Error, then falls back to the "<code>: " message prefix for errors that
// crossed the service container as plain strings. Returns "" when err carries
// no taxonomy code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	msg := err.Error()
	for _, code := range []Code{
		CodeAuthentication,
		CodeAuthorization,
		CodeValidation,
		CodeNotFound,
		CodeConflict,
	} {
		if strings.Contains(msg, string(code)+": ") {
			return code
		}
	}
	return ""
}

// MessageOf returns the caller-safe message for err: the text after the
// taxonomy prefix, or "" when err carries no taxonomy code.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	msg := err.Error()
	if code := CodeOf(err); code != "" {
		if idx := strings.Index(msg, string(code)+": "); idx >= 0 {
			return msg[idx+len(code)+2:]
		}
	}
	return ""
}
