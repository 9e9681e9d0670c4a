package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"podknight/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage and notifications are disabled and the disk space check is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Encoder.MinFreeGiB = 0
	cfgVal.Storage.Enabled = false
	cfgVal.Notifications.DiscordWebhook = ""
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithStorage enables uploads against the given bucket.
func WithStorage(bucket, prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Enabled = true
		b.cfg.Storage.Endpoint = "127.0.0.1:9000"
		b.cfg.Storage.Bucket = bucket
		b.cfg.Storage.Prefix = prefix
		b.cfg.Storage.AccessKey = "test"
		b.cfg.Storage.SecretKey = "test"
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := b.binDir()
		for _, name := range names {
			writeScript(b.t, filepath.Join(binDir, name), "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithFFmpegScript points the encoder at a stub ffmpeg running body.
// The last argument the stub receives is the output path.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.binDir(), "ffmpeg")
		writeScript(b.t, path, body)
		b.cfg.Encoder.FFmpegBinary = path
	}
}

// WithFFprobeDuration points the probe at a stub reporting seconds.
func WithFFprobeDuration(seconds string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.binDir(), "ffprobe")
		body := `echo '{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"` + seconds + `"}}'` + "\n"
		writeScript(b.t, path, body)
		b.cfg.Encoder.FFprobeBinary = path
	}
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return dir
}

func writeScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
