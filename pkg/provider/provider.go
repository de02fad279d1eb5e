// Package provider defines the contract every communication channel
// implements and the uniform Response record the dispatcher collects.
package provider

import (
	"context"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Service types.
const (
	ServiceTypeMain   = "main"
	ServiceTypeEmail  = "email"
	ServiceTypeSMS    = "sms"
	ServiceTypeForums = "forums"
)

// Provider is the capability every channel implementation exposes to the
// dispatcher. SendMessage always returns a list of Response, even for
// single-recipient sends, so single- and multi-recipient channels are
// treated identically.
//
// Vendor failures are captured as failure Responses; SendMessage returns a
// non-nil error only for attribute validation failures, or for vendor
// failures when the caller did not set SuppressErrors.
type Provider interface {
	// ServiceType returns the broad service category (email, sms, forums).
	ServiceType() string
	// ServiceName returns the human-readable provider name.
	ServiceName() string
	// ConfigSection returns the config section this provider reads.
	ConfigSection() string
	// Capabilities describes the provider's limits.
	Capabilities() Capabilities
	// SendMessage sends a message with the given per-call options.
	SendMessage(ctx context.Context, msg string, opts *SendOptions) ([]Response, error)
}

// Capabilities describes what a channel supports.
type Capabilities struct {
	Name                string `json:"name"`
	MaxRecipients       int    `json:"max_recipients"`
	MaxMessageSize      int    `json:"max_message_size"`
	SupportsAttachments bool   `json:"supports_attachments"`
	SupportsMedia       bool   `json:"supports_media"`
}
