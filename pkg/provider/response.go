package provider

import (
	"github.com/mlanser/f451-comms/pkg/errors"
)

// Response is the uniform per-send outcome record. Status is failure
// exactly when Errors is non-empty.
type Response struct {
	Status   string                 `json:"status"`
	Provider string                 `json:"provider"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Raw      interface{}            `json:"response,omitempty"`
	Errors   []string               `json:"errors,omitempty"`
}

// MakeResponse builds a Response, deriving the status from the error list.
func MakeResponse(provider string, data map[string]interface{}, raw interface{}, errs []string) Response {
	status := StatusSuccess
	if len(errs) > 0 {
		status = StatusFailure
	}
	return Response{
		Status:   status,
		Provider: provider,
		Data:     data,
		Raw:      raw,
		Errors:   errs,
	}
}

// IsOK reports whether the send succeeded.
func (r Response) IsOK() bool {
	return len(r.Errors) == 0
}

// RaiseOnErrors converts a failure Response into a communications error.
// It is the explicit opt-in for escalating vendor failures.
func (r Response) RaiseOnErrors() error {
	if r.IsOK() {
		return nil
	}
	return errors.NewCommunications(r.Provider, r.Errors)
}
