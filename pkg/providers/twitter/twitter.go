// Package twitter implements the social channel on the Twitter v1.1 API,
// posting status updates and sending direct messages with OAuth1-signed
// requests.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dghubble/oauth1"

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
	ChannelName = "f451_twitter"
	serviceName = "Twitter"
)

// Vendor limits.
const (
	maxStatusLen    = 280
	maxDMLen        = 10000
	maxDMRecipients = 100
	maxStatusMedia  = 4
	maxDMMedia      = 1

	defaultAPI    = "https://api.twitter.com/1.1"
	defaultUpload = "https://upload.twitter.com/1.1"
)

// Twitter is the social channel provider.
type Twitter struct {
	defaultTo   string
	defaultTags string

	baseURL   string
	uploadURL string
	http      *webhook.Sender
	logger    logger.Logger
}

// Option customizes a Twitter provider.
type Option func(*Twitter)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(t *Twitter) { t.logger = log }
}

// WithHTTPClient replaces the OAuth1-signing client, bypassing request
// signing. Intended for tests against local fakes.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Twitter) { t.http = webhook.NewSender(client, 0, t.logger) }
}

// WithBaseURL overrides both the API and upload base URLs.
func WithBaseURL(u string) Option {
	return func(t *Twitter) {
		u = strings.TrimRight(u, "/")
		t.baseURL = u
		t.uploadURL = u
	}
}

// New creates the social provider and verifies its credentials. A
// rejected credential set is a hard failure.
func New(ctx context.Context, settings config.TwitterSettings, opts ...Option) (*Twitter, error) {
	t := &Twitter{
		defaultTo:   settings.To,
		defaultTags: settings.Tags,
		baseURL:     defaultAPI,
		uploadURL:   defaultUpload,
		logger:      logger.Discard,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.http == nil {
		if settings.UserKey == "" || settings.UserSecret == "" ||
			settings.AuthKey == "" || settings.AuthSecret == "" {
			return nil, errors.New(errors.ErrMissingCredentials, "Twitter consumer and access credentials are required").
				WithProvider(ChannelName)
		}
		oauthConfig := oauth1.NewConfig(settings.UserKey, settings.UserSecret)
		token := oauth1.NewToken(settings.AuthKey, settings.AuthSecret)
		t.http = webhook.NewSender(oauthConfig.Client(oauth1.NoContext, token), 0, t.logger)
	}

	if err := t.verifyCredentials(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Twitter) verifyCredentials(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/account/verify_credentials.json", nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	status, _, err := t.http.Do(req)
	if err != nil || status != http.StatusOK {
		return errors.NewCredentials(ChannelName, "Invalid Twitter credentials").WithCause(err)
	}
	return nil
}

// ServiceType identifies the service category.
func (t *Twitter) ServiceType() string { return provider.ServiceTypeForums }

// ServiceName returns the provider name.
func (t *Twitter) ServiceName() string { return serviceName }

// ConfigSection returns the config section this provider reads.
func (t *Twitter) ConfigSection() string { return config.SectionTwitter }

// Capabilities describes the provider's limits.
func (t *Twitter) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:           ChannelName,
		MaxRecipients:  maxDMRecipients,
		MaxMessageSize: maxStatusLen,
		SupportsMedia:  true,
	}
}

// SendMessage posts a status update, or sends direct messages when
// opts.DM is set. Status updates mention the recipients inline; DMs go
// out one vendor call per recipient.
func (t *Twitter) SendMessage(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	if strings.TrimSpace(msg) == "" {
		return nil, errors.NewMissingAttribute("Twitter message cannot be blank.").WithProvider(ChannelName)
	}

	if opts.DM {
		return t.sendDMs(ctx, msg, opts)
	}
	return t.sendStatus(ctx, msg, opts)
}

func (t *Twitter) sendStatus(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	// Mentions are optional for status updates.
	to, err := attrib.NewRecipientList("to", attrib.KindSocial, opts.To,
		attrib.ListConfig{MaxNum: maxDMRecipients})
	if err != nil {
		return nil, err
	}

	var tagInput interface{}
	if len(opts.Tags) > 0 {
		tagInput = opts.Tags
	} else {
		tagInput = t.defaultTags
	}
	tags := attrib.NewTagList("tags", tagInput, attrib.TagConfig{})

	media, err := attrib.NewMediaList("media", opts.Media,
		attrib.FileConfig{Strict: !opts.SuppressErrors, MaxNum: maxStatusMedia})
	if err != nil {
		return nil, err
	}

	status := composeStatus(to.Clean(), msg, tags.Clean())
	data := map[string]interface{}{"status": status}

	var sendErrs []string
	raw, err := t.postStatus(ctx, status, media.Clean())
	if err != nil {
		sendErrs = append(sendErrs, err.Error())
	}

	response := provider.MakeResponse(ChannelName, data, raw, sendErrs)
	if !response.IsOK() {
		t.logger.Error("status post failed", "provider", ChannelName, "errors", response.Errors)
		if !opts.SuppressErrors {
			return []provider.Response{response}, response.RaiseOnErrors()
		}
	} else {
		t.logger.Info("status posted", "provider", ChannelName)
	}
	return []provider.Response{response}, nil
}

func (t *Twitter) sendDMs(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	toInput := opts.To
	if toInput == nil {
		toInput = t.defaultTo
	}
	to, err := attrib.NewRecipientList("to", attrib.KindSocial, toInput,
		attrib.ListConfig{Required: true, Strict: true, MinNum: 1, MaxNum: maxDMRecipients})
	if err != nil {
		if errors.GetErrorCode(err) == errors.ErrMissingAttribute {
			return nil, errors.NewMissingAttribute("DM recipient cannot be blank.").WithProvider(ChannelName)
		}
		return nil, err
	}

	msg = text.Truncate(msg, maxDMLen)

	responses := make([]provider.Response, 0, to.Len())
	for _, recipient := range to.Clean() {
		data := map[string]interface{}{"to": recipient, "text": msg}

		var sendErrs []string
		raw, err := t.postDM(ctx, recipient, msg)
		if err != nil {
			sendErrs = append(sendErrs, err.Error())
			t.logger.Error("dm send failed", "provider", ChannelName, "to", recipient, "error", err)
		} else {
			t.logger.Info("dm sent", "provider", ChannelName, "to", recipient)
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

// composeStatus joins mentions, message, and hashtags, truncated to the
// status length limit.
func composeStatus(mentions []string, msg string, tags []string) string {
	parts := make([]string, 0, 3)
	if len(mentions) > 0 {
		parts = append(parts, text.JoinWithAffixes(mentions, "@", "", " "))
	}
	parts = append(parts, msg)
	if len(tags) > 0 {
		parts = append(parts, text.JoinWithAffixes(tags, "#", "", " "))
	}

	return text.Truncate(strings.Join(parts, " "), maxStatusLen)
}

func (t *Twitter) postStatus(ctx context.Context, status string, mediaPaths []string) (string, error) {
	mediaIDs := make([]string, 0, len(mediaPaths))
	for _, path := range mediaPaths {
		id, err := t.uploadMedia(ctx, path)
		if err != nil {
			return "", err
		}
		mediaIDs = append(mediaIDs, id)
	}

	form := url.Values{}
	form.Set("status", status)
	if len(mediaIDs) > 0 {
		form.Set("media_ids", strings.Join(mediaIDs, ","))
	}

	return t.postForm(ctx, t.baseURL+"/statuses/update.json", form)
}

func (t *Twitter) postDM(ctx context.Context, screenName, msg string) (string, error) {
	form := url.Values{}
	form.Set("screen_name", screenName)
	form.Set("text", msg)
	return t.postForm(ctx, t.baseURL+"/direct_messages/new.json", form)
}

func (t *Twitter) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return string(body), errors.Newf(errors.ErrVendorRejected, "Twitter returned status %d: %s", status, string(body))
	}
	return string(body), nil
}

// uploadMedia uploads one image and returns its media ID.
func (t *Twitter) uploadMedia(ctx context.Context, path string) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create media part")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidAttribute, "unable to read media file %q", path)
	}
	_, err = io.Copy(part, f)
	_ = f.Close()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "unable to copy media file %q", path)
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to finalize media form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL+"/media/upload.json", &buf)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "unable to create request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	status, body, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Newf(errors.ErrVendorRejected, "Twitter media upload returned status %d", status)
	}

	var decoded struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.Wrap(err, errors.ErrCommunications, "unable to decode media upload response")
	}
	if decoded.MediaIDString == "" {
		return "", errors.New(errors.ErrCommunications, "media upload response missing media ID")
	}
	return decoded.MediaIDString, nil
}
