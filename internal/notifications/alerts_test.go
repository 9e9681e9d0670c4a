package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podknight/internal/config"
	"podknight/internal/notifications"
)

func TestNewAlerterReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	alerter := notifications.NewAlerter(&cfg)
	if err := alerter.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"name": "Example"}); err != nil {
		t.Fatalf("expected noop alerter to return nil, got %v", err)
	}
}

func TestNtfyAlerterFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "run started",
			event:         notifications.EventRunStarted,
			payload:       notifications.Payload{"name": "ep42", "parts": 3, "formats": 2},
			expectTitle:   "podknight - Run Started",
			expectMessage: "🎬 Processing ep42: 3 part(s) x 2 format(s)",
			expectTags:    "podknight,run,started",
		},
		{
			name:           "run completed",
			event:          notifications.EventRunCompleted,
			payload:        notifications.Payload{"name": "ep42", "outputs": 6, "duration": 90 * time.Second},
			expectTitle:    "podknight - Complete",
			expectMessage:  "✅ ep42 finished: 6 output(s) in 1m30s",
			expectTags:     "podknight,run,completed",
			expectPriority: "high",
		},
		{
			name:           "run completed with status failures",
			event:          notifications.EventRunCompleted,
			payload:        notifications.Payload{"name": "ep42", "outputs": 1, "notification_errors": 2},
			expectTitle:    "podknight - Complete",
			expectMessage:  "✅ ep42 finished: 1 output(s) in 0s\n2 status update(s) failed",
			expectTags:     "podknight,run,completed",
			expectPriority: "high",
		},
		{
			name:           "run failed",
			event:          notifications.EventRunFailed,
			payload:        notifications.Payload{"name": "ep42", "stage": "Encode", "error": errors.New("exit 1")},
			expectTitle:    "podknight - Failed",
			expectMessage:  "❌ ep42 failed during Encode: exit 1",
			expectTags:     "podknight,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "podknight - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "podknight,test",
			expectPriority: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var title, message, tags, priority string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				title = r.Header.Get("Title")
				tags = r.Header.Get("Tags")
				priority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				message = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			alerter := notifications.NewAlerter(&cfg)
			if err := alerter.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			if title != tt.expectTitle {
				t.Fatalf("title = %q, want %q", title, tt.expectTitle)
			}
			if message != tt.expectMessage {
				t.Fatalf("message = %q, want %q", message, tt.expectMessage)
			}
			if tags != tt.expectTags {
				t.Fatalf("tags = %q, want %q", tags, tt.expectTags)
			}
			if priority != tt.expectPriority {
				t.Fatalf("priority = %q, want %q", priority, tt.expectPriority)
			}
		})
	}
}

func TestNtfyAlerterIgnoresUnknownEvent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	if err := notifications.NewAlerter(&cfg).Publish(context.Background(), notifications.Event("nope"), nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if called {
		t.Fatal("unknown events must not be published")
	}
}
