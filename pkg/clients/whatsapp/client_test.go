package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/config"
)

func TestSendTextMessageUsesDefaultRecipient(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL,
		APIVersion:    "v20.0",
		NotifyTo:      "224600000000",
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "batch 1 sent to setter"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "224600000000", payload["to"])
}

func TestSendTextMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","code":131030}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "x", Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "131030")
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSendTextMessageWithoutRecipient(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1", APIVersion: "v20.0"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "hi"})
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 5000)
	got := truncate(long, maxBodyRunes)
	assert.Equal(t, maxBodyRunes, utf8.RuneCountInString(got))
	assert.Equal(t, "short", truncate("short", maxBodyRunes))
}
