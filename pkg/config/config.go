// Package config loads the section-based configuration that drives channel
// setup. Each channel reads its own section, keyed by its canonical
// channel name; a missing section leaves that channel disabled. The main
// section holds dispatcher defaults and fallback sender/recipient values.
package config

import (
	"gopkg.in/ini.v1"

	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/utils/text"
)

// Section names. Channel sections are keyed by canonical channel name.
const (
	SectionMain    = "main"
	SectionMailgun = "f451_mailgun"
	SectionSlack   = "f451_slack"
	SectionTwilio  = "f451_twilio"
	SectionTwitter = "f451_twitter"
)

// Recognized keys.
const (
	KeyChannels   = "channels"
	KeyChannelMap = "channel_map"
	KeyFrom       = "from"
	KeyFromName   = "from_name"
	KeyTo         = "to"
	KeySubject    = "subject"
	KeyTags       = "tags"
	KeyAPIKey     = "priv_api_key"
	KeyDomain     = "from_domain"
	KeyAuthToken  = "auth_token"
	KeyAcctSID    = "acct_sid"
	KeyUserKey    = "user_key"
	KeyUserSecret = "user_secret"
	KeyAuthKey    = "auth_key"
	KeyAuthSecret = "auth_secret"
	KeyToChannel  = "to_channel"
	KeyIconEmoji  = "icon_emoji"
	KeyTracking   = "tracking"
	KeyTestMode   = "testmode"
)

// Config is a loaded, read-only configuration source.
type Config struct {
	file *ini.File
}

// LoadFile loads configuration from an INI file.
func LoadFile(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidConfig, "unable to load config file %q", path)
	}
	return &Config{file: f}, nil
}

// LoadString loads configuration from INI-formatted text.
func LoadString(src string) (*Config, error) {
	f, err := ini.Load([]byte(src))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidConfig, "unable to parse config")
	}
	return &Config{file: f}, nil
}

// LoadMap builds configuration from an in-memory section map.
func LoadMap(sections map[string]map[string]string) (*Config, error) {
	f := ini.Empty()
	for name, keys := range sections {
		sec, err := f.NewSection(name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidConfig, "invalid section %q", name)
		}
		for k, v := range keys {
			if _, err := sec.NewKey(k, v); err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidConfig, "invalid key %q in section %q", k, name)
			}
		}
	}
	return &Config{file: f}, nil
}

// HasSection reports whether a named section exists.
func (c *Config) HasSection(name string) bool {
	if c == nil || c.file == nil {
		return false
	}
	return c.file.HasSection(name)
}

// get returns a key's value from a section, falling back to the main
// section for shared keys like from/to/subject/tags.
func (c *Config) get(section, key string) string {
	if !c.HasSection(section) {
		return ""
	}
	return c.file.Section(section).Key(key).String()
}

// getWithFallback returns the section's value, or the main section's when
// the channel section does not set the key.
func (c *Config) getWithFallback(section, key string) string {
	if v := c.get(section, key); v != "" {
		return v
	}
	return c.get(SectionMain, key)
}

// MainSettings holds the dispatcher-level configuration.
type MainSettings struct {
	Channels   []string
	ChannelMap map[string]string
	From       string
	To         string
	Subject    string
	Tags       string
}

// Main extracts the dispatcher settings.
func (c *Config) Main() MainSettings {
	return MainSettings{
		Channels:   text.SplitList(c.get(SectionMain, KeyChannels)),
		ChannelMap: text.KeyValueMap(c.get(SectionMain, KeyChannelMap)),
		From:       c.get(SectionMain, KeyFrom),
		To:         c.get(SectionMain, KeyTo),
		Subject:    c.get(SectionMain, KeySubject),
		Tags:       c.get(SectionMain, KeyTags),
	}
}

// MailgunSettings holds the email channel configuration.
type MailgunSettings struct {
	APIKey   string
	Domain   string
	From     string
	FromName string
	To       string
	Subject  string
	Tags     string
	Tracking bool
	TestMode bool
}

// Mailgun extracts the email channel settings. From, To, Subject, and Tags
// fall back to the main section.
func (c *Config) Mailgun() MailgunSettings {
	return MailgunSettings{
		APIKey:   c.get(SectionMailgun, KeyAPIKey),
		Domain:   c.get(SectionMailgun, KeyDomain),
		From:     c.getWithFallback(SectionMailgun, KeyFrom),
		FromName: c.get(SectionMailgun, KeyFromName),
		To:       c.getWithFallback(SectionMailgun, KeyTo),
		Subject:  c.getWithFallback(SectionMailgun, KeySubject),
		Tags:     c.getWithFallback(SectionMailgun, KeyTags),
		Tracking: text.ParseBool(c.get(SectionMailgun, KeyTracking)),
		TestMode: text.ParseBool(c.get(SectionMailgun, KeyTestMode)),
	}
}

// SlackSettings holds the chat channel configuration.
type SlackSettings struct {
	AuthToken string
	FromName  string
	ToChannel string
	IconEmoji string
}

// Slack extracts the chat channel settings.
func (c *Config) Slack() SlackSettings {
	return SlackSettings{
		AuthToken: c.get(SectionSlack, KeyAuthToken),
		FromName:  c.getWithFallback(SectionSlack, KeyFromName),
		ToChannel: c.get(SectionSlack, KeyToChannel),
		IconEmoji: c.get(SectionSlack, KeyIconEmoji),
	}
}

// TwilioSettings holds the SMS channel configuration.
type TwilioSettings struct {
	AcctSID   string
	AuthToken string
	From      string
	To        string
}

// Twilio extracts the SMS channel settings. To falls back to the main
// section.
func (c *Config) Twilio() TwilioSettings {
	return TwilioSettings{
		AcctSID:   c.get(SectionTwilio, KeyAcctSID),
		AuthToken: c.get(SectionTwilio, KeyAuthToken),
		From:      c.get(SectionTwilio, KeyFrom),
		To:        c.getWithFallback(SectionTwilio, KeyTo),
	}
}

// TwitterSettings holds the social channel configuration.
type TwitterSettings struct {
	UserKey    string
	UserSecret string
	AuthKey    string
	AuthSecret string
	To         string
	Tags       string
}

// Twitter extracts the social channel settings.
func (c *Config) Twitter() TwitterSettings {
	return TwitterSettings{
		UserKey:    c.get(SectionTwitter, KeyUserKey),
		UserSecret: c.get(SectionTwitter, KeyUserSecret),
		AuthKey:    c.get(SectionTwitter, KeyAuthKey),
		AuthSecret: c.get(SectionTwitter, KeyAuthSecret),
		To:         c.getWithFallback(SectionTwitter, KeyTo),
		Tags:       c.getWithFallback(SectionTwitter, KeyTags),
	}
}
