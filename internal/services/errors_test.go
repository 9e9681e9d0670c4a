package services_test

import (
	"errors"
	"strings"
	"testing"

	"podknight/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncode, "encode", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encode", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidPlan, "", "", "", nil)
	if err.Error() != "invalid plan: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFatalAndKind(t *testing.T) {
	notify := services.Wrap(services.ErrNotification, "status", "edit", "webhook down", nil)
	if services.Fatal(notify) {
		t.Fatal("notification errors must not be fatal")
	}
	if got := services.Kind(notify); got != "notification" {
		t.Fatalf("unexpected kind %q", got)
	}

	encode := services.Wrap(services.ErrEncode, "encode", "", "exit 1", nil)
	if !services.Fatal(encode) {
		t.Fatal("encode errors must be fatal")
	}
	if got := services.Kind(encode); got != "encode" {
		t.Fatalf("unexpected kind %q", got)
	}
	if services.Fatal(nil) {
		t.Fatal("nil is not fatal")
	}
	if got := services.Kind(errors.New("other")); got != "unknown" {
		t.Fatalf("unexpected kind %q", got)
	}
}
