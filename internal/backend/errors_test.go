package backend

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeConnectionRefused, "Connection Refused"},
		{ErrTypeDNS, "DNS Error"},
		{ErrTypeHTTP, "HTTP Error"},
		{ErrTypeParse, "Parse Error"},
		{ErrTypeCanceled, "Canceled"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.errType, got, tt.want)
		}
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &Error{Type: ErrTypeParse, Op: "GET /status", Message: "bad body", Err: cause}

	want := "GET /status: Parse Error: bad body (caused by: underlying)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"canceled", context.Canceled, ErrTypeCanceled},
		{"deadline", context.DeadlineExceeded, ErrTypeTimeout},
		{"dns", &net.DNSError{Name: "controller.lan", Err: "no such host"}, ErrTypeDNS},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrTypeConnectionRefused},
		{"generic", errors.New("connection reset"), ErrTypeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTransportError("GET /status", tt.err)
			if got.Type != tt.want {
				t.Errorf("Type = %v, want %v", got.Type, tt.want)
			}
			if got.Op != "GET /status" {
				t.Errorf("Op = %q", got.Op)
			}
		})
	}
}

func TestShortMessage(t *testing.T) {
	if ShortMessage(nil) != "" {
		t.Error("ShortMessage(nil) should be empty")
	}

	if got := ShortMessage(errors.New("plain")); got != "plain" {
		t.Errorf("ShortMessage(plain) = %q", got)
	}

	wrapped := errors.Join(errors.New("context"), NewParseError("GET /status", "not an object", nil))
	if got := ShortMessage(wrapped); got != "Backend sent an unreadable status" {
		t.Errorf("ShortMessage(wrapped parse) = %q", got)
	}
}

func TestPredicates(t *testing.T) {
	httpErr := NewHTTPError("POST /rgb", 503)

	if !IsHTTPError(httpErr) || IsNetworkError(httpErr) || IsParseError(httpErr) {
		t.Error("HTTP error misclassified")
	}

	if IsHTTPError(errors.New("x")) {
		t.Error("plain errors are not HTTP errors")
	}

	if !IsCanceled(context.Canceled) {
		t.Error("bare context.Canceled should count as canceled")
	}
}
