package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podknight/internal/config"
	"podknight/internal/services"
)

// Event identifies a run milestone published as a push alert.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event-specific fields.
type Payload map[string]any

// Alerter publishes push alerts.
type Alerter interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewAlerter builds an ntfy alerter when a topic is configured. When no
// topic is configured, a noop implementation is returned.
func NewAlerter(cfg *config.Config) Alerter {
	if cfg == nil {
		return noopAlerter{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopAlerter{}
	}
	return &ntfyAlerter{
		endpoint: topic,
		client:   &http.Client{Timeout: defaultTimeout(cfg.Notifications.Timeout())},
	}
}

type ntfyPayload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyAlerter struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyAlerter) Publish(ctx context.Context, event Event, payload Payload) error {
	data, ok := buildAlert(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

func buildAlert(event Event, payload Payload) (ntfyPayload, bool) {
	name := payloadString(payload, "name")
	switch event {
	case EventRunStarted:
		return ntfyPayload{
			title:   "podknight - Run Started",
			message: fmt.Sprintf("🎬 Processing %s: %d part(s) x %d format(s)", name, payloadInt(payload, "parts"), payloadInt(payload, "formats")),
			tags:    []string{"podknight", "run", "started"},
		}, true
	case EventRunCompleted:
		message := fmt.Sprintf("✅ %s finished: %d output(s) in %s", name, payloadInt(payload, "outputs"), payloadDuration(payload, "duration"))
		if n := payloadInt(payload, "notification_errors"); n > 0 {
			message += fmt.Sprintf("\n%d status update(s) failed", n)
		}
		return ntfyPayload{
			title:    "podknight - Complete",
			message:  message,
			tags:     []string{"podknight", "run", "completed"},
			priority: "high",
		}, true
	case EventRunFailed:
		var builder strings.Builder
		builder.WriteString("❌ ")
		builder.WriteString(name)
		builder.WriteString(" failed")
		if stage := payloadString(payload, "stage"); stage != "" {
			builder.WriteString(" during ")
			builder.WriteString(stage)
		}
		builder.WriteString(": ")
		if errText := payloadString(payload, "error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return ntfyPayload{
			title:    "podknight - Failed",
			message:  builder.String(),
			tags:     []string{"podknight", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return ntfyPayload{
			title:    "podknight - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"podknight", "test"},
			priority: "low",
		}, true
	default:
		return ntfyPayload{}, false
	}
}

func (n *ntfyAlerter) send(ctx context.Context, data ntfyPayload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return services.Wrap(services.ErrNotification, "alert", "build request", "ntfy request could not be built", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrNotification, "alert", "send", "ntfy notification failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrNotification, "alert", "send",
			fmt.Sprintf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return ""
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) string {
	d, _ := payload[key].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopAlerter struct{}

func (noopAlerter) Publish(context.Context, Event, Payload) error { return nil }
