package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WebhookNotifier posts notification events as JSON to a configured
// endpoint, typically a realtime gateway or message fan-out service.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// webhookPayload is the wire format of an outbound notification.
type webhookPayload struct {
	TargetUserID string `json:"target_user_id"`
	Event        string `json:"event"`
	Message      string `json:"message"`
	Link         string `json:"link"`
	SentAt       string `json:"sent_at"`
}

// NewWebhookNotifier creates a webhook notifier. The HTTP client is
// instrumented with otelhttp and capped by timeout so a slow receiver
// cannot stall the caller beyond its own deadline.
func NewWebhookNotifier(url string, timeout time.Duration, log zerolog.Logger) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}, nil
}

var _ Notifier = (*WebhookNotifier)(nil)

// Notify posts the event to the webhook endpoint. A non-2xx response is
// an error; the caller decides whether to log or retry (the workflow
// engine only logs).
func (n *WebhookNotifier) Notify(ctx context.Context, targetUserID string, event Event, message, link string) error {
	body, err := json.Marshal(webhookPayload{
		TargetUserID: targetUserID,
		Event:        string(event),
		Message:      message,
		Link:         link,
		SentAt:       time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.log.Debug().
		Str("event", string(event)).
		Str("target_user_id", targetUserID).
		Msg("notification delivered")
	return nil
}
