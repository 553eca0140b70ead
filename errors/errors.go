package errors

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"
)

// Code identifies one kind from the closed taxonomy shared with the host proxy.
type Code string

const (
	CodeUnknown               Code = "UNKNOWN"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeRateLimited           Code = "RATE_LIMITED"
	CodeTimeout               Code = "TIMEOUT"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeValidationError       Code = "VALIDATION_ERROR"
	CodeTransactionRejected   Code = "TRANSACTION_REJECTED"
	CodeTransactionTimeout    Code = "TRANSACTION_TIMEOUT"
	CodeInsufficientAllowance Code = "INSUFFICIENT_ALLOWANCE"
	CodeRPCError              Code = "RPC_ERROR"
	CodeAPIError              Code = "API_ERROR"
)

// Attributes provide per-code defaults. The taxonomy is closed, so the table
// is fixed at compile time and codes cannot be registered at runtime.
type Attributes struct {
	Message   string
	Retryable bool
}

var attributes = map[Code]Attributes{
	CodeUnknown: {
		Message: "unknown error",
	},
	CodeUnauthorized: {
		Message: "agent credentials missing or rejected",
	},
	CodeForbidden: {
		Message: "operation not permitted",
	},
	CodeNotFound: {
		Message: "resource not found",
	},
	CodeRateLimited: {
		Message:   "rate limited by the proxy",
		Retryable: true,
	},
	CodeTimeout: {
		Message:   "operation timed out",
		Retryable: true,
	},
	CodeNetworkError: {
		Message:   "network failure",
		Retryable: true,
	},
	CodeValidationError: {
		Message: "invalid argument",
	},
	CodeTransactionRejected: {
		Message: "transaction rejected by user",
	},
	CodeTransactionTimeout: {
		Message: "transaction approval timed out",
	},
	CodeInsufficientAllowance: {
		Message: "spending allowance exhausted",
	},
	CodeRPCError: {
		Message: "rpc call failed",
	},
	CodeAPIError: {
		Message: "proxy request failed",
	},
}

// AttributesOf returns the attributes for a code. Unknown codes fall back to
// the UNKNOWN attributes.
func AttributesOf(code Code) Attributes {
	if attr, ok := attributes[code]; ok {
		return attr
	}
	return attributes[CodeUnknown]
}

// Error is the single error type surfaced by the SDK.
type Error struct {
	code       Code
	message    string
	cause      error
	details    map[string]any
	subCode    int
	retryAfter time.Duration
	retryable  *bool
}

// Option configures optional error fields.
type Option func(*Error)

// WithDetail attaches one structured detail entry.
func WithDetail(key string, value any) Option {
	return func(e *Error) {
		if e.details == nil {
			e.details = make(map[string]any)
		}
		e.details[key] = value
	}
}

// WithDetails attaches a detail map, merging over existing entries.
func WithDetails(details map[string]any) Option {
	return func(e *Error) {
		if len(details) == 0 {
			return
		}
		if e.details == nil {
			e.details = make(map[string]any, len(details))
		}
		for k, v := range details {
			e.details[k] = v
		}
	}
}

// WithSubCode records a numeric sub-code: the HTTP status for proxy replies,
// or the RPC error code when the proxy relays one.
func WithSubCode(subCode int) Option {
	return func(e *Error) {
		e.subCode = subCode
	}
}

// WithRetryAfter records how long the proxy asked the caller to back off.
func WithRetryAfter(d time.Duration) Option {
	return func(e *Error) {
		if d > 0 {
			e.retryAfter = d
		}
	}
}

// WithRetryable overrides the code's default retryable flag.
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// New creates an error with the given code. An empty message falls back to the
// code's default message.
func New(code Code, message string, opts ...Option) *Error {
	if message == "" {
		message = AttributesOf(code).Message
	}
	e := &Error{code: code, message: message}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Wrap attaches a cause to a new error of the given code.
func Wrap(code Code, cause error, message string, opts ...Option) *Error {
	e := New(code, message, opts...)
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Unwrap exposes the cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches errors by code so errors.Is(err, New(CodeTimeout, "")) works.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Code returns the taxonomy code.
func (e *Error) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

// Message returns the human-readable message.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Details returns a copy of the structured details, or nil.
func (e *Error) Details() map[string]any {
	if e == nil || len(e.details) == 0 {
		return nil
	}
	clone := make(map[string]any, len(e.details))
	for k, v := range e.details {
		clone[k] = v
	}
	return clone
}

// SubCode returns the numeric sub-code, 0 when absent.
func (e *Error) SubCode() int {
	if e == nil {
		return 0
	}
	return e.subCode
}

// RetryAfter returns the backoff hint carried by the error, 0 when absent.
func (e *Error) RetryAfter() time.Duration {
	if e == nil {
		return 0
	}
	return e.retryAfter
}

// Retryable reports whether the caller may reasonably retry the operation.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	if e.retryable != nil {
		return *e.retryable
	}
	return AttributesOf(e.code).Retryable
}

// MarshalJSON serializes the error to its plain structured form.
func (e *Error) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	payload := struct {
		Code       Code           `json:"code"`
		Message    string         `json:"message"`
		Details    map[string]any `json:"details,omitempty"`
		SubCode    int            `json:"subCode,omitempty"`
		RetryAfter int64          `json:"retryAfterSeconds,omitempty"`
		Cause      string         `json:"cause,omitempty"`
	}{
		Code:       e.code,
		Message:    e.message,
		Details:    e.details,
		SubCode:    e.subCode,
		RetryAfter: int64(e.retryAfter / time.Second),
	}
	if e.cause != nil {
		payload.Cause = e.cause.Error()
	}
	return json.Marshal(payload)
}

// From extracts the SDK error type from an error chain.
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if stdErrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code of an error, CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// RetryableError reports whether an arbitrary error is retryable.
func RetryableError(err error) bool {
	if e, ok := From(err); ok {
		return e.Retryable()
	}
	return false
}
