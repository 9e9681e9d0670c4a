package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"podknight/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank detail: %q", results[2].Detail)
	}
	if missing := Missing(results); len(missing) != 2 {
		t.Fatalf("expected 2 missing, got %d", len(missing))
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	statuses := []Status{{Name: "a", Optional: true}, {Name: "b", Available: true}}
	if missing := Missing(statuses); len(missing) != 0 {
		t.Fatalf("expected no missing, got %#v", missing)
	}
}

func TestEncoderRequirementsFollowConfig(t *testing.T) {
	reqs := EncoderRequirements(config.Encoder{FFmpegBinary: "/opt/ffmpeg", FFprobeBinary: "/opt/ffprobe"})
	if len(reqs) != 2 || reqs[0].Command != "/opt/ffmpeg" || reqs[1].Command != "/opt/ffprobe" {
		t.Fatalf("unexpected requirements %#v", reqs)
	}
}

func TestVersionFirstLine(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	body := "#!/bin/sh\necho 'ffmpeg version 7.1 Copyright'\necho 'built with gcc'\n"
	if err := os.WriteFile(stub, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Version(context.Background(), stub)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != "ffmpeg version 7.1 Copyright" {
		t.Fatalf("unexpected version %q", got)
	}
}
