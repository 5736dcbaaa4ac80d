package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// ReplyForwarder mirrors assistant replies to another system.
type ReplyForwarder interface {
	Forward(ctx context.Context, sessionID, message string) error
}

type WebhookConfig struct {
	URL              string
	APIKey           string
	OrganizationCode string
	SenderID         int
	// ReceiverID overrides the session id as receiverExternalId.
	ReceiverID string
	Timeout    time.Duration
}

// WebhookForwarder posts each reply as {"senderId","receiverExternalId","message"}.
type WebhookForwarder struct {
	httpClient *http.Client
	cfg        WebhookConfig
	logger     *logging.Logger
}

func NewWebhookForwarder(cfg WebhookConfig, logger *logging.Logger) *WebhookForwarder {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &WebhookForwarder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type webhookPayload struct {
	SenderID           int    `json:"senderId"`
	ReceiverExternalID string `json:"receiverExternalId"`
	Message            string `json:"message"`
}

func (f *WebhookForwarder) Forward(ctx context.Context, sessionID, message string) error {
	receiver := f.cfg.ReceiverID
	if receiver == "" {
		receiver = sessionID
	}
	body, err := json.Marshal(webhookPayload{SenderID: f.cfg.SenderID, ReceiverExternalID: receiver, Message: message})
	if err != nil {
		return fmt.Errorf("conversation: marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("conversation: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("organization_code", f.cfg.OrganizationCode)
	req.Header.Set("api_key", f.cfg.APIKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("conversation: webhook request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("conversation: webhook returned %d", resp.StatusCode)
	}
	return nil
}
