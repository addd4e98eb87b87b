// Package notifier : уведомления о подозрительных входах на внешний webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paydocs-server/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type newIPEvent struct {
	UserUUID  string    `json:"user_uuid"`
	NewIP     string    `json:"new_ip"`
	OldIP     string    `json:"old_ip"`
	Timestamp time.Time `json:"timestamp"`
}

type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier : пустой url отключает уведомления
func NewWebhookNotifier(cfg *config.WebhookConfig) (*WebhookNotifier, error) {
	timeout := 5 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("неверный webhook.timeout: %w", err)
		}
		timeout = parsed
	}

	return &WebhookNotifier{
		url: cfg.URL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (n *WebhookNotifier) NotifyNewIP(ctx context.Context, userUUID, newIP, oldIP string) error {
	if n.url == "" {
		return nil
	}

	body, err := json.Marshal(newIPEvent{
		UserUUID:  userUUID,
		NewIP:     newIP,
		OldIP:     oldIP,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook ответил статусом %d", resp.StatusCode)
	}
	return nil
}
