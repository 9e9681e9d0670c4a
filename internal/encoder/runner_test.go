package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"podknight/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunnerSuccessStreamsCollapsedProgress(t *testing.T) {
	script := writeScript(t, `printf 'Input #0, mov\n' >&2
printf 'frame=   10 time=00:00:01.00\r' >&2
printf 'frame=   20 time=00:00:02.00\r' >&2
printf 'frame=   30 time=00:00:03.00\n' >&2
printf 'done\n'
exit 0`)

	runner := NewRunner(script, t.TempDir(), nil)
	var (
		mu   sync.Mutex
		seen []string
	)
	result, err := runner.Run(context.Background(), nil, func(line string) {
		mu.Lock()
		seen = append(seen, line)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	tail := result.Tail()
	if strings.Count(tail, "frame=") != 1 {
		t.Fatalf("expected one collapsed progress line, got %q", tail)
	}
	if !strings.Contains(tail, "time=00:00:03.00") {
		t.Fatalf("expected latest progress line retained, got %q", tail)
	}
	if result.Last() != "done" {
		t.Fatalf("Last() = %q, want done", result.Last())
	}
	if len(seen) == 0 {
		t.Fatal("expected progress callback to fire")
	}
}

func TestRunnerNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "Conversion failed!" >&2
exit 3`)
	runner := NewRunner(script, "", nil)
	_, err := runner.Run(context.Background(), []string{"-i", "x"}, nil)
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	if encErr.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", encErr.ExitCode)
	}
	if !strings.Contains(encErr.Tail, "Conversion failed!") {
		t.Fatalf("tail missing diagnostic: %q", encErr.Tail)
	}
	if !errors.Is(err, services.ErrEncode) {
		t.Fatal("expected errors.Is(err, ErrEncode)")
	}
}

func TestRunnerMissingBinary(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"), "", nil)
	_, err := runner.Run(context.Background(), nil, nil)
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Fatalf("expected EnvironmentError, got %v", err)
	}
	if !errors.Is(err, services.ErrEnvironment) {
		t.Fatal("expected errors.Is(err, ErrEnvironment)")
	}
}

func TestRunnerCancelledBeforeLaunch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(writeScript(t, "exit 0"), "", nil)
	if _, err := runner.Run(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, `pwd`)
	runner := NewRunner(script, dir, nil)
	result, err := runner.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	last, _ := filepath.EvalSymlinks(result.Last())
	if last != resolved {
		t.Fatalf("pwd = %q, want %q", result.Last(), dir)
	}
}

func TestHistoryCapsRetainedLines(t *testing.T) {
	h := newHistory(DefaultHistoryLimit)
	for i := 0; i < 250; i++ {
		h.add("line " + strings.Repeat("x", i%5))
	}
	if len(h.lines) != DefaultHistoryLimit {
		t.Fatalf("retained %d lines, want %d", len(h.lines), DefaultHistoryLimit)
	}
}

func TestHistoryCollapsesOnlyConsecutiveProgress(t *testing.T) {
	h := newHistory(10)
	h.add("frame=1")
	h.add("size=2")
	h.add("warning")
	h.add("frame=3")
	want := "size=2\nwarning\nframe=3"
	if got := (Result{lines: h.lines}).Tail(); got != want {
		t.Fatalf("history = %q, want %q", got, want)
	}
}

func TestParseProgress(t *testing.T) {
	percent, ok := ParseProgress("frame=  100 fps=25 time=00:00:30.00 bitrate=1k", 120)
	if !ok {
		t.Fatal("expected progress to parse")
	}
	if percent != 25 {
		t.Fatalf("percent = %v, want 25", percent)
	}
	if _, ok := ParseProgress("no timing here", 120); ok {
		t.Fatal("expected no progress")
	}
	if _, ok := ParseProgress("time=00:00:10.00", 0); ok {
		t.Fatal("expected zero total to be rejected")
	}
	if percent, _ := ParseProgress("time=00:05:00.00", 60); percent != 100 {
		t.Fatalf("percent should clamp to 100, got %v", percent)
	}
}
