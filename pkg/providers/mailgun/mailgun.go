// Package mailgun implements the email channel on the Mailgun messages
// API.
package mailgun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlanser/f451-comms/pkg/attrib"
	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/entity"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/logger"
	"github.com/mlanser/f451-comms/pkg/provider"
	"github.com/mlanser/f451-comms/pkg/providers/internal/webhook"
)

// Channel identity.
const (
	ChannelName = "f451_mailgun"
	serviceName = "Mailgun"
)

// Vendor limits.
const (
	maxRecipients = 1000
	maxMediaFiles = 10
	defaultAPI    = "https://api.mailgun.net/v3"
)

// Mailgun is the email channel provider.
type Mailgun struct {
	apiKey         string
	domain         string
	sender         entity.Entity
	defaultTo      string
	defaultSubject string
	defaultTags    string
	tracking       bool
	testMode       bool

	baseURL string
	http    *webhook.Sender
	logger  logger.Logger
}

// Option customizes a Mailgun provider.
type Option func(*Mailgun)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Mailgun) { m.logger = log }
}

// WithHTTPClient sets the HTTP client used for vendor calls.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Mailgun) { m.http = webhook.NewSender(client, 0, m.logger) }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(m *Mailgun) { m.baseURL = strings.TrimRight(url, "/") }
}

// New creates the email provider from its config section. Missing API
// credentials fail immediately since no send could ever succeed.
func New(settings config.MailgunSettings, opts ...Option) (*Mailgun, error) {
	if settings.APIKey == "" || settings.Domain == "" {
		return nil, errors.New(errors.ErrMissingCredentials, "Mailgun API key and domain are required").
			WithProvider(ChannelName)
	}

	sender, err := parseSender(settings.From, settings.FromName, settings.Domain)
	if err != nil {
		return nil, err
	}

	m := &Mailgun{
		apiKey:         settings.APIKey,
		domain:         settings.Domain,
		sender:         sender,
		defaultTo:      settings.To,
		defaultSubject: settings.Subject,
		defaultTags:    settings.Tags,
		tracking:       settings.Tracking,
		testMode:       settings.TestMode,
		baseURL:        defaultAPI,
		logger:         logger.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.http == nil {
		m.http = webhook.NewSender(nil, 0, m.logger)
	}
	return m, nil
}

// parseSender accepts either a plain email address or a "field:value|"
// map string describing the sender entity.
func parseSender(from, fromName, domain string) (entity.Entity, error) {
	attrs := entity.Attrs{Name: fromName, Email: from}
	if strings.Contains(from, ":") {
		e, err := entity.FromMap(kvToEntityMap(from))
		if err != nil {
			return entity.Entity{}, err
		}
		attrs = entity.Attrs{Name: e.Name(), Email: e.Email()}
		if fromName != "" {
			attrs.Name = fromName
		}
	}
	if attrs.Email == "" {
		attrs.Email = "mailgun@" + domain
	}
	return entity.New(attrs)
}

func kvToEntityMap(s string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.Split(s, "|") {
		if key, val, found := strings.Cut(item, ":"); found {
			out[strings.TrimSpace(key)] = strings.TrimSpace(val)
		}
	}
	return out
}

// ServiceType identifies the service category.
func (m *Mailgun) ServiceType() string { return provider.ServiceTypeEmail }

// ServiceName returns the provider name.
func (m *Mailgun) ServiceName() string { return serviceName }

// ConfigSection returns the config section this provider reads.
func (m *Mailgun) ConfigSection() string { return config.SectionMailgun }

// Capabilities describes the provider's limits.
func (m *Mailgun) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:                ChannelName,
		MaxRecipients:       maxRecipients,
		SupportsAttachments: true,
		SupportsMedia:       true,
	}
}

// SenderString formats the sender for the from field, e.g.
// "Jane Doe <mailgun@example.com>".
func (m *Mailgun) SenderString() string {
	if m.sender.Name() != "" {
		return fmt.Sprintf("%s <%s>", m.sender.Name(), m.sender.Email())
	}
	return m.sender.Email()
}

// SendMessage sends an email through the Mailgun messages API. Both the
// message body and the subject must be non-blank.
func (m *Mailgun) SendMessage(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	subject := opts.Subject
	if subject == "" {
		subject = m.defaultSubject
	}
	if strings.TrimSpace(msg) == "" || strings.TrimSpace(subject) == "" {
		return nil, errors.NewMissingAttribute("Email message or subject line cannot be blank.").
			WithProvider(ChannelName)
	}

	toInput := opts.To
	if toInput == nil {
		toInput = m.defaultTo
	}
	to, err := attrib.NewRecipientList("to", attrib.KindEmail, toInput,
		attrib.ListConfig{Required: true, Strict: true, MinNum: 1, MaxNum: maxRecipients})
	if err != nil {
		return nil, err
	}
	cc, err := attrib.NewRecipientList("cc", attrib.KindEmail, opts.Cc,
		attrib.ListConfig{MaxNum: maxRecipients})
	if err != nil {
		return nil, err
	}
	bcc, err := attrib.NewRecipientList("bcc", attrib.KindEmail, opts.Bcc,
		attrib.ListConfig{MaxNum: maxRecipients})
	if err != nil {
		return nil, err
	}

	var tagInput interface{}
	if len(opts.Tags) > 0 {
		tagInput = opts.Tags
	} else {
		tagInput = m.defaultTags
	}
	tags := attrib.NewTagList("tags", tagInput, attrib.TagConfig{})

	strictFiles := !opts.SuppressErrors
	attachments, err := attrib.NewAttachmentList("attachments", attrib.DispositionAttachment,
		opts.Attachments, attrib.FileConfig{Strict: strictFiles})
	if err != nil {
		return nil, err
	}
	inline, err := attrib.NewMediaList("inline", opts.Inline, attrib.FileConfig{Strict: strictFiles, MaxNum: maxMediaFiles})
	if err != nil {
		return nil, err
	}
	recipientData := attrib.NewRecipientDataMap("recipient_data", opts.RecipientData, maxRecipients)

	data := map[string]interface{}{
		"from":    m.SenderString(),
		"to":      to.Clean(),
		"subject": subject,
		"text":    msg,
	}

	var sendErrs []string
	raw, err := m.post(ctx, msg, subject, to, cc, bcc, tags, attachments, inline, recipientData, opts)
	if err != nil {
		sendErrs = append(sendErrs, err.Error())
	}

	response := provider.MakeResponse(ChannelName, data, raw, sendErrs)
	if !response.IsOK() {
		m.logger.Error("email send failed", "provider", ChannelName, "errors", response.Errors)
		if !opts.SuppressErrors {
			return []provider.Response{response}, response.RaiseOnErrors()
		}
	} else {
		m.logger.Info("email sent", "provider", ChannelName, "recipients", to.Len())
	}

	return []provider.Response{response}, nil
}

// post assembles and submits the multipart message form.
func (m *Mailgun) post(
	ctx context.Context,
	msg, subject string,
	to, cc, bcc *attrib.RecipientList,
	tags *attrib.TagList,
	attachments *attrib.AttachmentList,
	inline *attrib.MediaList,
	recipientData *attrib.RecipientDataMap,
	opts *provider.SendOptions,
) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string][]string{
		"from":    {m.SenderString()},
		"to":      to.Clean(),
		"cc":      cc.Clean(),
		"bcc":     bcc.Clean(),
		"subject": {subject},
		"text":    {msg},
	}
	if opts.HTML != "" {
		fields["html"] = []string{opts.HTML}
	}
	for _, tag := range tags.Clean() {
		fields["o:tag"] = append(fields["o:tag"], tag)
	}
	if m.tracking || opts.Tracking {
		fields["o:tracking"] = []string{"yes"}
	}
	if m.testMode || opts.TestMode {
		fields["o:testmode"] = []string{"yes"}
	}
	if recipientData.Len() > 0 {
		fields["recipient-variables"] = []string{recipientData.Clean()}
	}

	for name, values := range fields {
		for _, v := range values {
			if err := form.WriteField(name, v); err != nil {
				return "", errors.Wrap(err, errors.ErrInternal, "unable to write form field")
			}
		}
	}

	if err := attachFiles(form, attachments.Disposition(), attachments.Clean()); err != nil {
		return "", err
	}
	if err := attachFiles(form, attrib.DispositionInline, inline.Clean()); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to finalize form")
	}

	url := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth("api", m.apiKey)

	status, body, err := m.http.Do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return string(body), errors.Newf(errors.ErrVendorRejected, "Mailgun returned status %d: %s", status, string(body))
	}
	return string(body), nil
}

// attachFiles streams file parts into the form under the given
// disposition field name.
func attachFiles(form *multipart.Writer, disposition string, paths []string) error {
	for _, path := range paths {
		part, err := form.CreateFormFile(disposition, filepath.Base(path))
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "unable to create file part")
		}
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidAttribute, "unable to read attachment %q", path)
		}
		_, err = io.Copy(part, f)
		_ = f.Close()
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "unable to copy attachment %q", path)
		}
	}
	return nil
}
