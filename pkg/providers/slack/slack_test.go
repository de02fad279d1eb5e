package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/provider"
)

func testSettings() config.SlackSettings {
	return config.SlackSettings{
		AuthToken: "xoxb-test",
		FromName:  "comms-bot",
		ToChannel: "general",
		IconEmoji: "robot_face",
	}
}

// okServer answers auth.test and records the last chat.postMessage payload.
func okServer(t *testing.T, lastPayload *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth.test") {
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		if lastPayload != nil {
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			*lastPayload = payload
		}
		_, _ = w.Write([]byte(`{"ok":true,"ts":"12345.678"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server) *Slack {
	t.Helper()
	s, err := New(context.Background(), testSettings(),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestNewVerifiesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"invalid_auth"}`))
	}))
	defer srv.Close()

	_, err := New(context.Background(), testSettings(),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidCredentials, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "Unable to connect to Slack")
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(context.Background(), config.SlackSettings{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingCredentials, errors.GetErrorCode(err))

	_, err = New(context.Background(), config.SlackSettings{AuthToken: "short"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingCredentials, errors.GetErrorCode(err))
}

func TestNewSanitizesFromName(t *testing.T) {
	var payload map[string]interface{}
	srv := okServer(t, &payload)

	settings := testSettings()
	settings.FromName = "  comms\x00bot \n"
	s, err := New(context.Background(), settings, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = s.SendMessage(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "commsbot", payload["username"])
}

func TestSendMessage(t *testing.T) {
	var payload map[string]interface{}
	s := newTestProvider(t, okServer(t, &payload))

	responses, err := s.SendMessage(context.Background(), "deploy finished", nil)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].IsOK())

	assert.Equal(t, "general", payload["channel"])
	assert.Equal(t, "deploy finished", payload["text"])
	assert.Equal(t, "comms-bot", payload["username"])
	assert.Equal(t, ":robot_face:", payload["icon_emoji"])
}

func TestSendMessageChannelOverride(t *testing.T) {
	var payload map[string]interface{}
	s := newTestProvider(t, okServer(t, &payload))

	_, err := s.SendMessage(context.Background(), "hi", &provider.SendOptions{
		ToChannel: "alerts",
		IconEmoji: ":fire:",
	})
	require.NoError(t, err)
	assert.Equal(t, "alerts", payload["channel"])
	assert.Equal(t, ":fire:", payload["icon_emoji"])
}

func TestSendMessageTruncation(t *testing.T) {
	var payload map[string]interface{}
	s := newTestProvider(t, okServer(t, &payload))

	long := strings.Repeat("é", maxMsgLen+50)
	_, err := s.SendMessage(context.Background(), long, nil)
	require.NoError(t, err)

	sent, ok := payload["text"].(string)
	require.True(t, ok)
	assert.Equal(t, maxMsgLen, utf8.RuneCountInString(sent))
	assert.True(t, utf8.ValidString(sent), "truncation must not split a rune")
}

func TestSendMessageBlankValidation(t *testing.T) {
	s := newTestProvider(t, okServer(t, nil))

	_, err := s.SendMessage(context.Background(), "  ", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingAttribute, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "Slack message cannot be blank.")

	settings := testSettings()
	settings.ToChannel = ""
	srv := okServer(t, nil)
	noChannel, err := New(context.Background(), settings, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = noChannel.SendMessage(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Slack channel cannot be blank.")
}

func TestSendMessageVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth.test") {
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	t.Cleanup(srv.Close)
	s := newTestProvider(t, srv)

	responses, err := s.SendMessage(context.Background(), "hi", nil)
	require.Error(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, provider.StatusFailure, responses[0].Status)
	assert.Contains(t, responses[0].Errors[0], "channel_not_found")

	// Suppressed failures come back as failure responses only.
	responses, err = s.SendMessage(context.Background(), "hi", &provider.SendOptions{SuppressErrors: true})
	require.NoError(t, err)
	assert.Equal(t, provider.StatusFailure, responses[0].Status)
}

func TestSendMessageWithBlocks(t *testing.T) {
	var payload map[string]interface{}
	s := newTestProvider(t, okServer(t, &payload))

	blocks := []map[string]interface{}{
		{"type": "section", "text": map[string]interface{}{"type": "mrkdwn", "text": "*done*"}},
	}
	_, err := s.SendMessageWithBlocks(context.Background(), "done", blocks, nil)
	require.NoError(t, err)
	require.NotNil(t, payload["blocks"])

	_, err = s.SendMessageWithBlocks(context.Background(), "done", nil, nil)
	require.Error(t, err, "empty blocks should fail")
}

func TestSendMessageWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	var uploadedFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth.test") {
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		require.True(t, strings.HasSuffix(r.URL.Path, "/files.upload"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for _, headers := range r.MultipartForm.File {
			for _, h := range headers {
				uploadedFile = h.Filename
			}
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	s := newTestProvider(t, srv)

	responses, err := s.SendMessageWithFile(context.Background(), "see file", path, nil)
	require.NoError(t, err)
	assert.True(t, responses[0].IsOK())
	assert.Equal(t, "report.txt", uploadedFile)
}

func TestProcessIconEmoji(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tada", ":tada:"},
		{":tada:", ":tada:"},
		{" tada ", ":tada:"},
		{"", ""},
		{":::", ""},
	}
	for _, tt := range tests {
		if got := ProcessIconEmoji(tt.input); got != tt.want {
			t.Errorf("ProcessIconEmoji(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
