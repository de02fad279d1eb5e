// Package twilio implements the SMS channel on the Twilio Messages API.
package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mlanser/f451-comms/pkg/attrib"
	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/logger"
	"github.com/mlanser/f451-comms/pkg/provider"
	"github.com/mlanser/f451-comms/pkg/providers/internal/webhook"
	"github.com/mlanser/f451-comms/pkg/utils/text"
)

// Channel identity.
const (
	ChannelName = "f451_twilio"
	serviceName = "Twilio"
)

// Vendor limits.
const (
	maxRecipients = 100
	maxMsgLen     = 1600
	defaultAPI    = "https://api.twilio.com/2010-04-01"
)

// Twilio is the SMS channel provider. Each recipient gets its own vendor
// call and its own Response.
type Twilio struct {
	acctSID   string
	authToken string
	from      string
	defaultTo string

	baseURL string
	http    *webhook.Sender
	logger  logger.Logger
}

// Option customizes a Twilio provider.
type Option func(*Twilio)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(t *Twilio) { t.logger = log }
}

// WithHTTPClient sets the HTTP client used for vendor calls.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Twilio) { t.http = webhook.NewSender(client, 0, t.logger) }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(t *Twilio) { t.baseURL = strings.TrimRight(u, "/") }
}

// New creates the SMS provider from its config section. The account SID,
// auth token, and sender number are all required.
func New(settings config.TwilioSettings, opts ...Option) (*Twilio, error) {
	if settings.AcctSID == "" || settings.AuthToken == "" {
		return nil, errors.New(errors.ErrMissingCredentials, "Twilio account SID and auth token are required").
			WithProvider(ChannelName)
	}
	if settings.From == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "Twilio sender number is required").
			WithProvider(ChannelName)
	}

	t := &Twilio{
		acctSID:   settings.AcctSID,
		authToken: settings.AuthToken,
		from:      settings.From,
		defaultTo: settings.To,
		baseURL:   defaultAPI,
		logger:    logger.Discard,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.http == nil {
		t.http = webhook.NewSender(nil, 0, t.logger)
	}
	return t, nil
}

// ServiceType identifies the service category.
func (t *Twilio) ServiceType() string { return provider.ServiceTypeSMS }

// ServiceName returns the provider name.
func (t *Twilio) ServiceName() string { return serviceName }

// ConfigSection returns the config section this provider reads.
func (t *Twilio) ConfigSection() string { return config.SectionTwilio }

// Capabilities describes the provider's limits.
func (t *Twilio) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:           ChannelName,
		MaxRecipients:  maxRecipients,
		MaxMessageSize: maxMsgLen,
		SupportsMedia:  true,
	}
}

// SendMessage sends an SMS to every recipient, one vendor call each. A
// failed recipient does not stop delivery to the rest; with
// SuppressErrors unset the first failure is returned as an error after
// all recipients were attempted.
func (t *Twilio) SendMessage(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	if strings.TrimSpace(msg) == "" {
		return nil, errors.NewMissingAttribute("SMS message cannot be blank.").WithProvider(ChannelName)
	}
	msg = text.Truncate(msg, maxMsgLen)

	toInput := opts.To
	if toInput == nil {
		toInput = t.defaultTo
	}
	to, err := attrib.NewRecipientList("to", attrib.KindPhone, toInput,
		attrib.ListConfig{Required: true, Strict: true, MinNum: 1, MaxNum: maxRecipients})
	if err != nil {
		return nil, err
	}

	responses := make([]provider.Response, 0, to.Len())
	for _, recipient := range to.Clean() {
		data := map[string]interface{}{"to": recipient, "body": msg}

		var sendErrs []string
		raw, err := t.post(ctx, recipient, msg, opts.Media)
		if err != nil {
			sendErrs = append(sendErrs, err.Error())
			t.logger.Error("sms send failed", "provider", ChannelName, "to", recipient, "error", err)
		} else {
			t.logger.Info("sms sent", "provider", ChannelName, "to", recipient)
		}

		responses = append(responses, provider.MakeResponse(ChannelName, data, raw, sendErrs))
	}

	if !opts.SuppressErrors {
		for _, r := range responses {
			if !r.IsOK() {
				return responses, r.RaiseOnErrors()
			}
		}
	}
	return responses, nil
}

// post submits one message to the Messages endpoint.
func (t *Twilio) post(ctx context.Context, to, body string, mediaURLs []string) (string, error) {
	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", to)
	form.Set("Body", body)
	for _, u := range mediaURLs {
		form.Add("MediaUrl", u)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.acctSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.acctSID, t.authToken)

	status, respBody, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return string(respBody), errors.Newf(errors.ErrVendorRejected, "Twilio returned status %d: %s", status, string(respBody))
	}
	return string(respBody), nil
}
