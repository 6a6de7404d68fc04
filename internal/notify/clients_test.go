// AngelaMos | 2026
// clients_test.go

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/config"
)

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	client := NewTelegramClient(config.TelegramConfig{
		BotToken: "bot-token",
		ChatID:   "chat-1",
	})
	client.baseURL = server.URL

	err := client.Send(context.Background(), "Nueva venta: $10.00")
	require.NoError(t, err)

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "chat-1", gotBody["chat_id"])
	assert.Equal(t, "Nueva venta: $10.00", gotBody["text"])
}

func TestTelegramSendNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
	))
	defer server.Close()

	client := NewTelegramClient(config.TelegramConfig{BotToken: "x"})
	client.baseURL = server.URL

	err := client.Send(context.Background(), "hola")
	assert.ErrorContains(t, err, "unexpected status 403")
}

func TestWhatsAppSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	client := NewWhatsAppClient(config.WhatsAppConfig{
		InstanceID: "instance1",
		Token:      "wa-token",
		Phone:      "+5215550000000",
	})
	client.baseURL = server.URL

	err := client.Send(context.Background(), "Alerta de stock bajo")
	require.NoError(t, err)

	assert.Equal(t, "/instance1/messages/chat", gotPath)
	assert.Equal(t, "wa-token", gotBody["token"])
	assert.Equal(t, "+5215550000000", gotBody["to"])
	assert.Equal(t, "Alerta de stock bajo", gotBody["body"])
}

func TestWhatsAppSendToOverridesRecipient(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	client := NewWhatsAppClient(config.WhatsAppConfig{
		InstanceID: "instance1",
		Token:      "wa-token",
		Phone:      "+5215550000000",
	})
	client.baseURL = server.URL

	err := client.SendTo(context.Background(), "+5215559999999", "hola")
	require.NoError(t, err)

	assert.Equal(t, "+5215559999999", gotBody["to"])
}

func TestSendPasswordResetRequiresEmailChannel(t *testing.T) {
	n := NewNotifier(config.NotifyConfig{}, nil, nil)

	err := n.SendPasswordReset(context.Background(), "a@b.com", "tok")
	assert.Error(t, err)
}
