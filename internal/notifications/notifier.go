package notifications

import (
	"context"
	"strings"
	"time"

	"podknight/internal/config"
)

const userAgent = "podknight/0.1.0"

// EmbedField is one name/value row of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a structured message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// Message is a plain or structured notification body.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Text builds a content-only message.
func Text(content string) Message {
	return Message{Content: content}
}

// Handle identifies a sent message for later edits.
type Handle struct {
	ID string
}

// Valid reports whether the handle refers to a delivered message.
func (h Handle) Valid() bool {
	return strings.TrimSpace(h.ID) != ""
}

// Notifier sends messages and edits previously sent ones.
type Notifier interface {
	Send(ctx context.Context, msg Message) (Handle, error)
	Edit(ctx context.Context, handle Handle, msg Message) error
}

// NewNotifier returns a webhook notifier when a webhook is configured and a
// no-op otherwise.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg == nil {
		return Noop{}
	}
	webhook := strings.TrimSpace(cfg.Notifications.DiscordWebhook)
	if webhook == "" {
		return Noop{}
	}
	return NewWebhook(webhook, cfg.Notifications.Timeout())
}

// OrNoop substitutes the no-op notifier for nil.
func OrNoop(n Notifier) Notifier {
	if n == nil {
		return Noop{}
	}
	return n
}

// Noop discards every message.
type Noop struct{}

func (Noop) Send(context.Context, Message) (Handle, error) { return Handle{}, nil }

func (Noop) Edit(context.Context, Handle, Message) error { return nil }

func defaultTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}
