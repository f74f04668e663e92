// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/eventprocessor"
	"github.com/tomtom215/seawatch/internal/models"
)

// WebhookNotifier posts events as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	url            string
	headers        map[string]string
	client         *http.Client
	limiter        *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
}

// WebhookPayload is the JSON body sent to the endpoint.
type WebhookPayload struct {
	Event     *models.Event `json:"event"`
	EventType string        `json:"event_type"` // abnormal_event
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"` // seawatch
}

// NewWebhookNotifier creates the notifier. It is disabled without a URL.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultWebhookConfig().Timeout
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &WebhookNotifier{
		url:            cfg.URL,
		headers:        headers,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, 1),
		circuitBreaker: eventprocessor.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// Name returns the notifier name.
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Enabled returns whether a URL is configured.
func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

// Send waits for the rate limiter and posts the event. Status codes of 400
// and above are errors and count against the circuit breaker.
func (n *WebhookNotifier) Send(ctx context.Context, e *models.Event) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}

	payload := WebhookPayload{
		Event:     e,
		EventType: "abnormal_event",
		Timestamp: time.Now().UTC(),
		Source:    "seawatch",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = n.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, n.post(ctx, body)
	})
	return err
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
