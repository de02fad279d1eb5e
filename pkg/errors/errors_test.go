package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommsErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *CommsError
		want string
	}{
		{
			"code and message",
			New(ErrInvalidProvider, "no such channel"),
			"INVALID_PROVIDER: no such channel",
		},
		{
			"with provider",
			New(ErrCommunications, "send failed").WithProvider("f451_slack"),
			"COMMUNICATIONS_ERROR: send failed (provider: f451_slack)",
		},
		{
			"with provider and attribute",
			New(ErrMissingAttribute, "blank").WithProvider("f451_mailgun").WithAttribute("to_email"),
			"MISSING_ATTRIBUTE: blank (provider: f451_mailgun, attribute: to_email)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewInvalidProvider("bogus")
	if !errors.Is(err, New(ErrInvalidProvider, "")) {
		t.Error("errors.Is should match on error code")
	}
	if errors.Is(err, New(ErrMissingAttribute, "")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrConnectionFailed, "vendor unreachable")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if err.Code != ErrConnectionFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrConnectionFailed)
	}
}

func TestCategoryAndRetryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		category  string
		retryable bool
	}{
		{ErrInvalidAttribute, "attribute", false},
		{ErrMissingAttribute, "attribute", false},
		{ErrInvalidProvider, "channel", false},
		{ErrInvalidCredentials, "configuration", false},
		{ErrCommunications, "vendor", true},
		{ErrNetworkTimeout, "vendor", true},
		{ErrorCode("UNKNOWN_CODE"), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := GetCategory(tt.code); got != tt.category {
				t.Errorf("GetCategory = %q, want %q", got, tt.category)
			}
			if got := IsRetryable(tt.code); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestNewCommunicationsJoinsErrors(t *testing.T) {
	err := NewCommunications("f451_mailgun", []string{"HTTP 500", "timeout"})
	if !strings.Contains(err.Message, "HTTP 500, timeout") {
		t.Errorf("Message = %q, want joined error strings", err.Message)
	}
	if err.Provider != "f451_mailgun" {
		t.Errorf("Provider = %q", err.Provider)
	}
}

func TestMultiError(t *testing.T) {
	me := NewMultiError()
	if me.ErrorOrNil() != nil {
		t.Error("empty MultiError should yield nil")
	}

	me.Add(nil)
	if !me.IsEmpty() {
		t.Error("Add(nil) should be a no-op")
	}

	first := New(ErrVendorRejected, "rejected")
	me.Add(first)
	me.Add(New(ErrNetworkTimeout, "timeout"))

	if me.First() != first {
		t.Error("First should return the first added error")
	}
	if !strings.Contains(me.Error(), "2 errors") {
		t.Errorf("Error() = %q", me.Error())
	}
	if me.ErrorOrNil() == nil {
		t.Error("non-empty MultiError should yield itself")
	}
}

func TestIsAttributeError(t *testing.T) {
	if !IsAttributeError(NewInvalidAttribute("bad email")) {
		t.Error("invalid attribute should classify as attribute error")
	}
	if IsAttributeError(fmt.Errorf("plain")) {
		t.Error("plain error should not classify as attribute error")
	}
	if !IsVendorError(NewCommunications("x", []string{"e"})) {
		t.Error("communications error should classify as vendor error")
	}
}
