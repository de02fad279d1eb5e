// Package slack implements the chat channel on the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlanser/f451-comms/pkg/attrib"
	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/logger"
	"github.com/mlanser/f451-comms/pkg/provider"
	"github.com/mlanser/f451-comms/pkg/providers/internal/webhook"
	"github.com/mlanser/f451-comms/pkg/utils/text"
	"github.com/mlanser/f451-comms/pkg/utils/validation"
)

// Channel identity.
const (
	ChannelName = "f451_slack"
	serviceName = "Slack"
)

// maxMsgLen caps a posted message; longer text is truncated.
const maxMsgLen = 320

const defaultAPI = "https://slack.com/api"

// apiResponse is the envelope every Slack Web API call returns.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Slack is the chat channel provider.
type Slack struct {
	token          string
	fromName       string
	defaultChannel string
	iconEmoji      string

	baseURL string
	http    *webhook.Sender
	logger  logger.Logger
}

// Option customizes a Slack provider.
type Option func(*Slack)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Slack) { s.logger = log }
}

// WithHTTPClient sets the HTTP client used for vendor calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Slack) { s.http = webhook.NewSender(client, 0, s.logger) }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(s *Slack) { s.baseURL = strings.TrimRight(url, "/") }
}

// New creates the chat provider and verifies its credentials against the
// auth.test endpoint. Rejected credentials are a hard failure since no
// message could ever be delivered.
func New(ctx context.Context, settings config.SlackSettings, opts ...Option) (*Slack, error) {
	if result := settingsValidator().Validate(map[string]interface{}{
		config.KeyAuthToken: settings.AuthToken,
	}); !result.Valid {
		return nil, errors.New(errors.ErrMissingCredentials, "Slack auth token is missing or malformed").
			WithProvider(ChannelName)
	}

	s := &Slack{
		token:          settings.AuthToken,
		fromName:       validation.SanitizeString(settings.FromName),
		defaultChannel: settings.ToChannel,
		iconEmoji:      settings.IconEmoji,
		baseURL:        defaultAPI,
		logger:         logger.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.http == nil {
		s.http = webhook.NewSender(nil, 0, s.logger)
	}

	if err := s.verifyAuth(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// settingsValidator builds the rule set applied to the config section
// before any vendor call. Slack bot tokens are always longer than the
// minimum enforced here.
func settingsValidator() *validation.Validator {
	v := validation.NewValidator()
	v.AddRule(config.KeyAuthToken, validation.RequiredRule{})
	v.AddRule(config.KeyAuthToken, validation.MinLengthRule{Min: 8})
	return v
}

func (s *Slack) verifyAuth(ctx context.Context) error {
	_, err := s.callAPI(ctx, "auth.test", map[string]interface{}{})
	if err != nil {
		return errors.NewCredentials(ChannelName, "Unable to connect to Slack").WithCause(err)
	}
	return nil
}

// ServiceType identifies the service category.
func (s *Slack) ServiceType() string { return provider.ServiceTypeForums }

// ServiceName returns the provider name.
func (s *Slack) ServiceName() string { return serviceName }

// ConfigSection returns the config section this provider reads.
func (s *Slack) ConfigSection() string { return config.SectionSlack }

// Capabilities describes the provider's limits.
func (s *Slack) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:           ChannelName,
		MaxRecipients:  1,
		MaxMessageSize: maxMsgLen,
		SupportsMedia:  true,
	}
}

// SendMessage posts a message to a Slack channel.
func (s *Slack) SendMessage(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	return s.send(ctx, msg, nil, opts)
}

// SendMessageWithBlocks posts a message with Block Kit content. The plain
// message doubles as the notification fallback text.
func (s *Slack) SendMessageWithBlocks(ctx context.Context, msg string, blocks []map[string]interface{}, opts *provider.SendOptions) ([]provider.Response, error) {
	if len(blocks) == 0 {
		return nil, errors.NewMissingAttribute("Slack blocks cannot be blank.").WithProvider(ChannelName)
	}
	return s.send(ctx, msg, blocks, opts)
}

func (s *Slack) send(ctx context.Context, msg string, blocks []map[string]interface{}, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	if strings.TrimSpace(msg) == "" {
		return nil, errors.NewMissingAttribute("Slack message cannot be blank.").WithProvider(ChannelName)
	}
	channel := opts.ToChannel
	if channel == "" {
		channel = s.defaultChannel
	}
	if strings.TrimSpace(channel) == "" {
		return nil, errors.NewMissingAttribute("Slack channel cannot be blank.").WithProvider(ChannelName)
	}

	msg = text.Truncate(msg, maxMsgLen)

	icon := opts.IconEmoji
	if icon == "" {
		icon = s.iconEmoji
	}

	payload := map[string]interface{}{
		"channel": channel,
		"text":    msg,
	}
	if s.fromName != "" {
		payload["username"] = s.fromName
	}
	if icon != "" {
		payload["icon_emoji"] = ProcessIconEmoji(icon)
	}
	if len(blocks) > 0 {
		payload["blocks"] = blocks
	}

	data := map[string]interface{}{"channel": channel, "text": msg}

	var sendErrs []string
	raw, err := s.callAPI(ctx, "chat.postMessage", payload)
	if err != nil {
		sendErrs = append(sendErrs, err.Error())
	}

	response := provider.MakeResponse(ChannelName, data, raw, sendErrs)
	if !response.IsOK() {
		s.logger.Error("chat send failed", "provider", ChannelName, "channel", channel, "errors", response.Errors)
		if !opts.SuppressErrors {
			return []provider.Response{response}, response.RaiseOnErrors()
		}
	} else {
		s.logger.Info("chat message sent", "provider", ChannelName, "channel", channel)
	}

	return []provider.Response{response}, nil
}

// SendMessageWithFile posts a message and uploads the first valid file
// from the given file list.
func (s *Slack) SendMessageWithFile(ctx context.Context, msg string, files interface{}, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	if strings.TrimSpace(msg) == "" {
		return nil, errors.NewMissingAttribute("Slack message cannot be blank.").WithProvider(ChannelName)
	}
	channel := opts.ToChannel
	if channel == "" {
		channel = s.defaultChannel
	}
	if strings.TrimSpace(channel) == "" {
		return nil, errors.NewMissingAttribute("Slack channel cannot be blank.").WithProvider(ChannelName)
	}

	fileList, err := attrib.NewAttachmentList("file", attrib.DispositionAttachment, files,
		attrib.FileConfig{Strict: !opts.SuppressErrors, MaxNum: 1})
	if err != nil {
		return nil, err
	}
	if fileList.Len() == 0 {
		return nil, errors.NewMissingAttribute("Slack file cannot be blank.").WithProvider(ChannelName)
	}
	path := fileList.Clean()[0]

	data := map[string]interface{}{"channel": channel, "text": msg, "file": path}

	var sendErrs []string
	raw, err := s.uploadFile(ctx, channel, msg, path)
	if err != nil {
		sendErrs = append(sendErrs, err.Error())
	}

	response := provider.MakeResponse(ChannelName, data, raw, sendErrs)
	if !response.IsOK() && !opts.SuppressErrors {
		return []provider.Response{response}, response.RaiseOnErrors()
	}
	return []provider.Response{response}, nil
}

// callAPI posts a JSON payload to a Web API method and decodes the
// standard ok/error envelope.
func (s *Slack) callAPI(ctx context.Context, method string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	status, respBody, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	return decodeEnvelope(status, respBody)
}

func (s *Slack) uploadFile(ctx context.Context, channel, comment, path string) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	_ = form.WriteField("channels", channel)
	_ = form.WriteField("initial_comment", comment)
	_ = form.WriteField("title", filepath.Base(path))

	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create file part")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidAttribute, "unable to read file %q", path)
	}
	_, err = io.Copy(part, f)
	_ = f.Close()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "unable to copy file %q", path)
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to finalize form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/files.upload", &buf)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)

	status, respBody, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	return decodeEnvelope(status, respBody)
}

func decodeEnvelope(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return string(body), errors.Newf(errors.ErrVendorRejected, "Slack returned status %d", status)
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return string(body), errors.Wrap(err, errors.ErrCommunications, "unable to decode Slack response")
	}
	if !envelope.OK {
		return string(body), errors.Newf(errors.ErrVendorRejected, "Slack error: %s", envelope.Error)
	}
	return string(body), nil
}

// ProcessIconEmoji normalizes an emoji name to the ":name:" form.
func ProcessIconEmoji(name string) string {
	name = strings.Trim(strings.TrimSpace(name), ":")
	if name == "" {
		return ""
	}
	return fmt.Sprintf(":%s:", name)
}
