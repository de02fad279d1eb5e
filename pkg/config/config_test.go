package config

import (
	"reflect"
	"testing"
)

const sampleConfig = `
[main]
channels = f451_slack|f451_twitter
channel_map = email:f451_mailgun|sms:f451_twilio
from = sender@example.com
subject = Default subject

[f451_mailgun]
priv_api_key = key-123
from_domain = mg.example.com
to = default@example.com
tracking = yes

[f451_slack]
auth_token = xoxb-123
to_channel = comms-test
icon_emoji = robot_face
`

func TestLoadString(t *testing.T) {
	cfg, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	if !cfg.HasSection(SectionMailgun) {
		t.Error("mailgun section should exist")
	}
	if cfg.HasSection(SectionTwilio) {
		t.Error("twilio section should not exist")
	}

	main := cfg.Main()
	if want := []string{"f451_slack", "f451_twitter"}; !reflect.DeepEqual(main.Channels, want) {
		t.Errorf("Channels = %v, want %v", main.Channels, want)
	}
	wantMap := map[string]string{"email": "f451_mailgun", "sms": "f451_twilio"}
	if !reflect.DeepEqual(main.ChannelMap, wantMap) {
		t.Errorf("ChannelMap = %v, want %v", main.ChannelMap, wantMap)
	}
}

func TestMailgunFallbacks(t *testing.T) {
	cfg, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	mg := cfg.Mailgun()
	if mg.APIKey != "key-123" {
		t.Errorf("APIKey = %q", mg.APIKey)
	}
	// from falls back to main; to is set locally.
	if mg.From != "sender@example.com" {
		t.Errorf("From = %q, want fallback from main", mg.From)
	}
	if mg.To != "default@example.com" {
		t.Errorf("To = %q", mg.To)
	}
	if mg.Subject != "Default subject" {
		t.Errorf("Subject = %q, want fallback from main", mg.Subject)
	}
	if !mg.Tracking {
		t.Error("Tracking should parse yes as true")
	}
	if mg.TestMode {
		t.Error("TestMode unset should be false")
	}
}

func TestSlackSettings(t *testing.T) {
	cfg, err := LoadString(sampleConfig)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	sl := cfg.Slack()
	if sl.AuthToken != "xoxb-123" {
		t.Errorf("AuthToken = %q", sl.AuthToken)
	}
	if sl.ToChannel != "comms-test" {
		t.Errorf("ToChannel = %q", sl.ToChannel)
	}
	if sl.IconEmoji != "robot_face" {
		t.Errorf("IconEmoji = %q", sl.IconEmoji)
	}
}

func TestLoadMap(t *testing.T) {
	cfg, err := LoadMap(map[string]map[string]string{
		SectionMain:   {KeyChannels: "f451_twilio"},
		SectionTwilio: {KeyAcctSID: "AC123", KeyAuthToken: "tok", KeyFrom: "+12025550123"},
	})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	tw := cfg.Twilio()
	if tw.AcctSID != "AC123" || tw.AuthToken != "tok" || tw.From != "+12025550123" {
		t.Errorf("Twilio = %+v", tw)
	}
}

func TestMissingSectionYieldsZeroSettings(t *testing.T) {
	cfg, err := LoadString("[main]\nchannels = f451_slack\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	if got := cfg.Twitter(); got.UserKey != "" || got.To != "" {
		t.Errorf("Twitter settings from missing section = %+v", got)
	}
}

func TestLoadStringInvalid(t *testing.T) {
	if _, err := LoadString("[unclosed\nkey=val"); err == nil {
		t.Error("malformed config should fail to load")
	}
}
