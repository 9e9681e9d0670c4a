package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podknight/internal/services"
)

// Webhook posts to a Discord-compatible webhook. Sends use ?wait=true so the
// response carries the message id needed for edits.
type Webhook struct {
	endpoint string
	client   *http.Client
}

// NewWebhook builds a webhook notifier for endpoint.
func NewWebhook(endpoint string, timeout time.Duration) *Webhook {
	return &Webhook{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		client:   &http.Client{Timeout: defaultTimeout(timeout)},
	}
}

func (w *Webhook) Send(ctx context.Context, msg Message) (Handle, error) {
	target, err := w.url("", url.Values{"wait": []string{"true"}})
	if err != nil {
		return Handle{}, err
	}
	body, err := w.do(ctx, http.MethodPost, target, msg)
	if err != nil {
		return Handle{}, services.Wrap(services.ErrNotification, "notify", "send", "Status message could not be posted", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		if err == nil {
			err = fmt.Errorf("response missing message id")
		}
		return Handle{}, services.Wrap(services.ErrNotification, "notify", "send", "Webhook response was not understood", err)
	}
	return Handle{ID: created.ID}, nil
}

func (w *Webhook) Edit(ctx context.Context, handle Handle, msg Message) error {
	if !handle.Valid() {
		return services.Wrap(services.ErrNotification, "notify", "edit", "No message to edit", nil)
	}
	target, err := w.url("/messages/"+url.PathEscape(handle.ID), nil)
	if err != nil {
		return err
	}
	if _, err := w.do(ctx, http.MethodPatch, target, msg); err != nil {
		return services.Wrap(services.ErrNotification, "notify", "edit", "Status message could not be updated", err)
	}
	return nil
}

func (w *Webhook) url(suffix string, extra url.Values) (string, error) {
	parsed, err := url.Parse(w.endpoint)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "notify", "parse webhook", "Webhook URL is invalid", err)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + suffix
	query := parsed.Query()
	for key, values := range extra {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (w *Webhook) do(ctx context.Context, method, target string, msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
