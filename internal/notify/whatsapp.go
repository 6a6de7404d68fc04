// AngelaMos | 2026
// whatsapp.go

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pos-nt/backend/internal/config"
)

const ultraMsgBaseURL = "https://api.ultramsg.com"

// WhatsAppClient sends chat messages through the UltraMsg gateway.
type WhatsAppClient struct {
	httpClient *http.Client
	baseURL    string
	instanceID string
	token      string
	phone      string
}

func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    ultraMsgBaseURL,
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		phone:      cfg.Phone,
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, body string) error {
	return c.SendTo(ctx, c.phone, body)
}

func (c *WhatsAppClient) SendTo(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"token": c.token,
		"to":    to,
		"body":  body,
	})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages/chat", c.baseURL, c.instanceID)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"send whatsapp message: unexpected status %d",
			resp.StatusCode,
		)
	}

	return nil
}
