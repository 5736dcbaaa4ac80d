package conversation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/survey-assistant/pkg/logging"
)

func TestWebhookForwarder(t *testing.T) {
	var (
		got     map[string]any
		headers http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewWebhookForwarder(WebhookConfig{
		URL:              server.URL,
		APIKey:           "key-1",
		OrganizationCode: "org-1",
		SenderID:         5320,
	}, logging.NewWithFormat("error", "text", io.Discard))

	require.NoError(t, f.Forward(context.Background(), "+15551234567", "hello there"))
	assert.Equal(t, float64(5320), got["senderId"])
	assert.Equal(t, "+15551234567", got["receiverExternalId"])
	assert.Equal(t, "hello there", got["message"])
	assert.Equal(t, "key-1", headers.Get("api_key"))
	assert.Equal(t, "org-1", headers.Get("organization_code"))
}

func TestWebhookForwarderReceiverOverrideAndFailure(t *testing.T) {
	var receiver string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		receiver = body.ReceiverExternalID
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewWebhookForwarder(WebhookConfig{URL: server.URL, ReceiverID: "fixed"}, nil)
	err := f.Forward(context.Background(), "s1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, "fixed", receiver)
}

type recordingForwarder struct {
	messages []string
}

func (r *recordingForwarder) Forward(_ context.Context, _, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

func TestEngineForwardsReplies(t *testing.T) {
	fwd := &recordingForwarder{}
	f := newFixture(t, func(o *Options) { o.Forwarder = fwd })
	f.say(t, "hello")
	f.say(t, "english")
	require.Len(t, fwd.messages, 2)
	assert.Contains(t, fwd.messages[1], "Health New England")
}
