package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request exceeded its deadline
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the backend address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the backend hostname could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-success HTTP status code
	ErrTypeHTTP
	// ErrTypeParse indicates a response body that could not be decoded
	ErrTypeParse
	// ErrTypeCanceled indicates the caller canceled the request
	ErrTypeCanceled
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Client method.
type Error struct {
	Type       ErrorType // Category of error
	Op         string    // "GET /status", "POST /alarm/on", ...
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeHTTP only)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyTransportError turns an error from http.Client.Do into an *Error.
func classifyTransportError(op string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrTypeCanceled, Op: op, Message: "request canceled", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Type: ErrTypeTimeout, Op: op, Message: "backend did not respond in time", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:    ErrTypeDNS,
			Op:      op,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &Error{Type: ErrTypeConnectionRefused, Op: op, Message: "backend refused connection", Err: err}
	}

	return &Error{Type: ErrTypeNetwork, Op: op, Message: "network error occurred", Err: err}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(op string, statusCode int) *Error {
	return &Error{
		Type:       ErrTypeHTTP,
		Op:         op,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
	}
}

// NewParseError creates a parsing error
func NewParseError(op string, message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Op: op, Message: message, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Type, true
	}
	return 0, false
}

// IsNetworkError reports whether err is a transport failure (including
// timeout, connection refused and DNS).
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	if !ok {
		return false
	}
	return t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeParse
}

// IsCanceled checks if the request was abandoned by its caller
func IsCanceled(err error) bool {
	t, ok := typeOf(err)
	if ok {
		return t == ErrTypeCanceled
	}
	return errors.Is(err, context.Canceled)
}

// ShortMessage returns a concise, user-facing description of err suitable
// for the dashboard's error banner.
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}

	var be *Error
	if !errors.As(err, &be) {
		return err.Error()
	}

	switch be.Type {
	case ErrTypeTimeout:
		return "Backend not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Backend refused connection - is the controller running?"
	case ErrTypeDNS:
		return "Cannot resolve backend hostname"
	case ErrTypeNetwork:
		return "Cannot reach backend - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Backend error (HTTP %d)", be.StatusCode)
	case ErrTypeParse:
		return "Backend sent an unreadable status"
	case ErrTypeCanceled:
		return "Request canceled"
	default:
		return be.Message
	}
}
