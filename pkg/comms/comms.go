// Package comms is the unified outbound-messaging facade. A Comms value
// holds a read-only channel registry (canonical name to provider, nil when
// the channel is unconfigured), an alias map, and a default channel list,
// and fans a plain-text message out to every resolved channel.
package comms

import (
	"context"
	"strings"
	"time"

	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/logger"
	"github.com/mlanser/f451-comms/pkg/observability"
	"github.com/mlanser/f451-comms/pkg/provider"
	"github.com/mlanser/f451-comms/pkg/providers/mailgun"
	"github.com/mlanser/f451-comms/pkg/providers/slack"
	"github.com/mlanser/f451-comms/pkg/providers/twilio"
	"github.com/mlanser/f451-comms/pkg/providers/twitter"
	"github.com/mlanser/f451-comms/pkg/utils/idgen"
	"github.com/mlanser/f451-comms/pkg/utils/text"
)

// Channel names. Canonical names double as config section names.
const (
	ChannelAll     = "all"
	ChannelMain    = "f451_main"
	ChannelMailgun = config.SectionMailgun
	ChannelSlack   = config.SectionSlack
	ChannelTwilio  = config.SectionTwilio
	ChannelTwitter = config.SectionTwitter

	serviceName = "Main"
)

// channelOrder fixes the registry iteration order for "all" expansion and
// fan-out, so per-channel Response groupings are deterministic.
var channelOrder = []string{ChannelMailgun, ChannelSlack, ChannelTwilio, ChannelTwitter}

// Comms is the dispatcher. The registry is read-only after construction;
// re-configuration means building a new Comms.
type Comms struct {
	channels        map[string]provider.Provider
	channelMap      map[string]string
	defaultChannels []string

	logger    logger.Logger
	telemetry *observability.TelemetryProvider
	ids       *idgen.DispatchIDGenerator
}

// Option customizes a Comms dispatcher.
type Option func(*Comms)

// WithLogger sets the logger shared by the dispatcher and the channels it
// constructs.
func WithLogger(log logger.Logger) Option {
	return func(c *Comms) { c.logger = log }
}

// WithTelemetry sets the telemetry provider.
func WithTelemetry(tp *observability.TelemetryProvider) Option {
	return func(c *Comms) { c.telemetry = tp }
}

// WithProvider pre-registers a provider under a canonical channel name,
// replacing the config-driven construction for that channel.
func WithProvider(name string, p provider.Provider) Option {
	return func(c *Comms) { c.channels[name] = p }
}

// New builds a dispatcher from a loaded configuration. Each canonical
// channel is constructed from its config section; a missing section leaves
// that channel disabled. A channel whose credentials are rejected at
// construction fails New outright.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Comms, error) {
	main := cfg.Main()

	c := &Comms{
		channels:        make(map[string]provider.Provider, len(channelOrder)),
		channelMap:      main.ChannelMap,
		defaultChannels: main.Channels,
		logger:          logger.New(),
		ids:             idgen.NewDispatchIDGenerator(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initChannels(ctx, cfg); err != nil {
		return nil, err
	}

	c.logger.Info("dispatcher ready",
		"enabled", strings.Join(c.EnabledChannels(), "|"),
		"defaults", strings.Join(c.defaultChannels, "|"))

	return c, nil
}

func (c *Comms) initChannels(ctx context.Context, cfg *config.Config) error {
	if _, injected := c.channels[ChannelMailgun]; !injected {
		c.channels[ChannelMailgun] = nil
		if cfg.HasSection(config.SectionMailgun) {
			p, err := mailgun.New(cfg.Mailgun(), mailgun.WithLogger(c.logger))
			if err != nil {
				return err
			}
			c.channels[ChannelMailgun] = p
		}
	}

	if _, injected := c.channels[ChannelSlack]; !injected {
		c.channels[ChannelSlack] = nil
		if cfg.HasSection(config.SectionSlack) {
			p, err := slack.New(ctx, cfg.Slack(), slack.WithLogger(c.logger))
			if err != nil {
				return err
			}
			c.channels[ChannelSlack] = p
		}
	}

	if _, injected := c.channels[ChannelTwilio]; !injected {
		c.channels[ChannelTwilio] = nil
		if cfg.HasSection(config.SectionTwilio) {
			p, err := twilio.New(cfg.Twilio(), twilio.WithLogger(c.logger))
			if err != nil {
				return err
			}
			c.channels[ChannelTwilio] = p
		}
	}

	if _, injected := c.channels[ChannelTwitter]; !injected {
		c.channels[ChannelTwitter] = nil
		if cfg.HasSection(config.SectionTwitter) {
			p, err := twitter.New(ctx, cfg.Twitter(), twitter.WithLogger(c.logger))
			if err != nil {
				return err
			}
			c.channels[ChannelTwitter] = p
		}
	}

	return nil
}

// ServiceType identifies the dispatcher's service category.
func (c *Comms) ServiceType() string { return provider.ServiceTypeMain }

// ServiceName returns the dispatcher's provider name.
func (c *Comms) ServiceName() string { return serviceName }

// ConfigSection returns the dispatcher's config section.
func (c *Comms) ConfigSection() string { return ChannelMain }

// Capabilities describes the dispatcher itself.
func (c *Comms) Capabilities() provider.Capabilities {
	return provider.Capabilities{Name: ChannelMain}
}

// Channel returns the provider registered under a canonical name, or nil
// when the channel is disabled or unknown.
func (c *Comms) Channel(name string) provider.Provider {
	return c.channels[name]
}

// ValidChannels returns every registered canonical channel name.
func (c *Comms) ValidChannels() []string {
	out := make([]string, 0, len(channelOrder))
	for _, name := range channelOrder {
		if _, ok := c.channels[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// EnabledChannels returns the canonical names with an initialized provider.
func (c *Comms) EnabledChannels() []string {
	out := make([]string, 0, len(channelOrder))
	for _, name := range channelOrder {
		if c.channels[name] != nil {
			out = append(out, name)
		}
	}
	return out
}

// NormalizeChannelList flattens a channel selector (a single name, a
// "|"-delimited string, or a []string whose elements may themselves be
// delimited) into a list of trimmed, non-empty tokens.
func (c *Comms) NormalizeChannelList(selector interface{}) []string {
	switch v := selector.(type) {
	case string:
		return text.SplitList(v)
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, text.SplitList(item)...)
		}
		return out
	}
	return nil
}

// verifyChannel reports whether a token may pass resolution. Strict mode
// keeps only canonical names, alias-map keys, and the "all" wildcard.
func (c *Comms) verifyChannel(name string, strict bool) bool {
	if name == "" {
		return false
	}
	if !strict {
		return true
	}
	if name == ChannelAll {
		return true
	}
	if _, ok := c.channels[name]; ok {
		return true
	}
	_, ok := c.channelMap[name]
	return ok
}

// IsValidChannel reports whether every token in the selector names a
// registered channel or a known alias, independent of enablement. An empty
// selector is not valid.
func (c *Comms) IsValidChannel(selector interface{}) bool {
	tokens := c.NormalizeChannelList(selector)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !c.verifyChannel(token, true) {
			return false
		}
	}
	return true
}

// IsEnabledChannel reports whether every token, after alias resolution,
// names an enabled channel. An empty selector is not enabled.
func (c *Comms) IsEnabledChannel(selector interface{}) bool {
	tokens := c.NormalizeChannelList(selector)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if canonical, ok := c.channelMap[token]; ok {
			token = canonical
		}
		if c.channels[token] == nil {
			return false
		}
	}
	return true
}

// ProcessChannelList resolves a channel selector into the canonical list of
// enabled channels: normalize, verify (strict keeps only known names and
// aliases), expand the "all" wildcard, map aliases, filter to enabled, and
// collapse duplicates keeping the first occurrence. Two selectors naming
// the same channel through different aliases yield it once.
func (c *Comms) ProcessChannelList(selector interface{}, strict bool) []string {
	tokens := c.NormalizeChannelList(selector)

	expanded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !c.verifyChannel(token, strict) {
			continue
		}
		if token == ChannelAll {
			expanded = append(expanded, channelOrder...)
			continue
		}
		if canonical, ok := c.channelMap[token]; ok {
			token = canonical
		}
		expanded = append(expanded, token)
	}

	seen := make(map[string]bool, len(expanded))
	out := make([]string, 0, len(expanded))
	for _, name := range expanded {
		if c.channels[name] == nil || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// SendMessage fans a message out to every channel the options select, or
// to the configured default channels when the options name none. Fan-out
// is sequential in registry order and independent per channel: one
// channel's failure never blocks the others. The flattened Response list
// keeps per-channel groupings contiguous.
func (c *Comms) SendMessage(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	opts = opts.Clone()

	if strings.TrimSpace(msg) == "" {
		return nil, errors.NewMissingAttribute("Message cannot be blank.").WithProvider(ChannelMain)
	}

	var selector interface{}
	if len(opts.Channels) > 0 {
		selector = opts.Channels
	} else {
		selector = c.defaultChannels
	}

	channels := c.ProcessChannelList(selector, true)
	if len(channels) == 0 {
		c.logger.Error("channel resolution empty", "selector", selector)
		return nil, errors.New(errors.ErrInvalidProvider, "Invalid communication channel(s).")
	}

	msgID := c.ids.GenerateMessageID()
	ctx, span := c.telemetry.TraceDispatch(ctx, msgID, len(channels))
	defer span.End()

	responses := make([]provider.Response, 0, len(channels))
	sendErrs := errors.NewMultiError()

	for _, name := range channels {
		chResponses, err := c.sendToChannel(ctx, name, msgID, msg, opts)
		responses = append(responses, chResponses...)
		sendErrs.Add(err)
	}

	err := sendErrs.ErrorOrNil()
	if err != nil {
		c.telemetry.SetSpanError(span, err)
	} else {
		c.telemetry.SetSpanSuccess(span)
	}
	return responses, err
}

func (c *Comms) sendToChannel(ctx context.Context, name, msgID, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	ctx, span := c.telemetry.TraceChannelSend(ctx, msgID, name)
	defer span.End()

	start := time.Now()
	responses, err := c.channels[name].SendMessage(ctx, msg, opts)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Error("channel send failed", "msg_id", msgID, "channel", name, "error", err)
		c.telemetry.RecordMessageFailed(ctx, name, elapsed, string(errors.GetErrorCode(err)))
		c.telemetry.SetSpanError(span, err)
		return responses, err
	}

	c.logger.Info("channel send done", "msg_id", msgID, "channel", name, "responses", len(responses))
	c.telemetry.RecordMessageSent(ctx, name, elapsed)
	c.telemetry.SetSpanSuccess(span)
	return responses, nil
}

// sendVia dispatches directly to one canonical channel, bypassing
// resolution. A registered channel without a configured provider is a
// provider-disabled error; an unknown name is an invalid-provider error.
func (c *Comms) sendVia(ctx context.Context, name, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	if _, ok := c.channels[name]; !ok {
		return nil, errors.NewInvalidProvider(name)
	}
	if c.channels[name] == nil {
		c.logger.Error("channel not enabled", "channel", name)
		return nil, errors.Newf(errors.ErrProviderDisabled, "'%s' is not a valid communication channel.", name).
			WithProvider(name)
	}
	return c.sendToChannel(ctx, name, c.ids.GenerateMessageID(), msg, opts.Clone())
}

// SendMessageViaEmail sends via the email channel only.
func (c *Comms) SendMessageViaEmail(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	return c.sendVia(ctx, ChannelMailgun, msg, opts)
}

// SendMessageViaSlack sends via the chat channel only.
func (c *Comms) SendMessageViaSlack(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	return c.sendVia(ctx, ChannelSlack, msg, opts)
}

// SendMessageViaSMS sends via the SMS channel only.
func (c *Comms) SendMessageViaSMS(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	return c.sendVia(ctx, ChannelTwilio, msg, opts)
}

// SendMessageViaTwitter sends via the social channel only.
func (c *Comms) SendMessageViaTwitter(ctx context.Context, msg string, opts *provider.SendOptions) ([]provider.Response, error) {
	return c.sendVia(ctx, ChannelTwitter, msg, opts)
}
