package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podknight/internal/config"
	"podknight/internal/logging"
	"podknight/internal/services"
)

func logFile(t *testing.T) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("log file missing message: %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath, read := logFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "encoder").Info("message without caller", logging.Int("part", 2))

	content := read()
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(content, " INFO  encoder: message without caller part=2") {
		t.Fatalf("unexpected console line: %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath, read := logFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")
	if content := read(); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersRunScope(t *testing.T) {
	logPath, read := logFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "1f2e3d4c-5b6a-7980")
	ctx = services.WithPart(ctx, 1)
	ctx = services.WithFormat(ctx, "audio")
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "episode")
	logger.Info("encode finished", logging.String("output", "show 2.mp3"))

	content := read()
	if !strings.Contains(content, `[1f2e3d4c part 2 audio] episode: encode finished output="show 2.mp3"`) {
		t.Fatalf("unexpected console line: %q", content)
	}
	if strings.Contains(content, logging.FieldRunID+"=") {
		t.Fatalf("run id should only appear in the scope: %q", content)
	}
}

func TestJSONLoggerUsesStandardKeys(t *testing.T) {
	logPath, read := logFile(t)
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithPart(ctx, 1)
	ctx = services.WithFormat(ctx, "audio")
	logging.WithContext(ctx, logger).Info("encoded")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "encoded" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry[logging.FieldRunID] != "run-123" || entry[logging.FieldFormat] != "audio" {
		t.Fatalf("context fields missing: %v", entry)
	}
	if entry[logging.FieldPartIndex] != float64(1) {
		t.Fatalf("part index = %v", entry[logging.FieldPartIndex])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath, read := logFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger, "status edit failed", "status_edit_failed")
	content := read()
	for _, want := range []string{"event_type=status_edit_failed", "error_hint=", "impact="} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestPruneLogs(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.log")
	newPath := filepath.Join(dir, "new.log")
	for _, p := range []string{oldPath, newPath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	keepPath := filepath.Join(dir, "keep.log")
	if err := os.WriteFile(keepPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(keepPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if removed := logging.PruneLogs(logging.NewNop(), dir, "*.log", 5, keepPath); removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err = %v", err)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("expected new log kept: %v", err)
	}
	if _, err := os.Stat(keepPath); err != nil {
		t.Fatalf("expected excluded log kept: %v", err)
	}
	if removed := logging.PruneLogs(logging.NewNop(), dir, "*.log", 0); removed != 0 {
		t.Fatalf("expected pruning disabled, removed %d", removed)
	}
}
