package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/provider"
)

func testSettings() config.TwilioSettings {
	return config.TwilioSettings{
		AcctSID:   "AC123",
		AuthToken: "token-test",
		From:      "+12025550100",
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Twilio {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tw, err := New(testSettings(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return tw
}

func TestNewValidatesSettings(t *testing.T) {
	_, err := New(config.TwilioSettings{From: "+12025550100"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingCredentials, errors.GetErrorCode(err))

	_, err = New(config.TwilioSettings{AcctSID: "AC123", AuthToken: "tok"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidConfig, errors.GetErrorCode(err))
}

func TestSendMessagePerRecipient(t *testing.T) {
	var gotTo []string
	tw := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTo = append(gotTo, r.PostForm.Get("To"))
		assert.Equal(t, "+12025550100", r.PostForm.Get("From"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	})

	responses, err := tw.SendMessage(context.Background(), "ping",
		&provider.SendOptions{To: "+12025550123|+12025550124"})
	require.NoError(t, err)
	require.Len(t, responses, 2, "one response per recipient")

	assert.Equal(t, []string{"+12025550123", "+12025550124"}, gotTo)
	for _, r := range responses {
		assert.True(t, r.IsOK())
		assert.Equal(t, ChannelName, r.Provider)
	}
}

func TestSendMessageTruncation(t *testing.T) {
	var gotBody string
	tw := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	})

	long := strings.Repeat("é", maxMsgLen+10)
	_, err := tw.SendMessage(context.Background(), long,
		&provider.SendOptions{To: "+12025550123"})
	require.NoError(t, err)

	assert.Equal(t, maxMsgLen, utf8.RuneCountInString(gotBody))
	assert.True(t, utf8.ValidString(gotBody), "truncation must not split a rune")
}

func TestSendMessageBlank(t *testing.T) {
	tw, err := New(testSettings())
	require.NoError(t, err)

	_, err = tw.SendMessage(context.Background(), " ", &provider.SendOptions{To: "+12025550123"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingAttribute, errors.GetErrorCode(err))
}

func TestSendMessageNoRecipients(t *testing.T) {
	tw, err := New(testSettings())
	require.NoError(t, err)

	_, err = tw.SendMessage(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingAttribute, errors.GetErrorCode(err))
}

func TestSendMessagePartialFailure(t *testing.T) {
	calls := 0
	tw := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	responses, err := tw.SendMessage(context.Background(), "hello",
		&provider.SendOptions{To: "+12025550123|+12025550124", SuppressErrors: true})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.Equal(t, provider.StatusFailure, responses[0].Status)
	assert.Equal(t, provider.StatusSuccess, responses[1].Status)
	assert.Equal(t, 2, calls, "failure must not stop remaining recipients")
}

func TestSendMessageFailureRaises(t *testing.T) {
	tw := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	responses, err := tw.SendMessage(context.Background(), "hello",
		&provider.SendOptions{To: "+12025550123"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCommunications, errors.GetErrorCode(err))
	require.Len(t, responses, 1)
}

func TestMediaURLs(t *testing.T) {
	var gotMedia []string
	tw := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotMedia = r.PostForm["MediaUrl"]
		w.WriteHeader(http.StatusCreated)
	})

	_, err := tw.SendMessage(context.Background(), "pic",
		&provider.SendOptions{To: "+12025550123", Media: []string{"https://example.com/a.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.jpg"}, gotMedia)
}
