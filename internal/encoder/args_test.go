package encoder

import (
	"strings"
	"testing"

	"podknight/internal/config"
	"podknight/internal/cutplan"
)

func TestBuildArgsShape(t *testing.T) {
	part := cutplan.Part{Index: 0, Start: 60, End: 120.5, Filename: "show_1"}
	format := Format{Kind: KindAudio, Encoding: []string{"-b:a", "192k"}}
	args := BuildArgs("/in/source.mkv", part, format, "/out/show_1.mp3")

	joined := strings.Join(args, " ")
	if !strings.HasPrefix(joined, "-hide_banner -nostdin -y -ss 60.000 -i /in/source.mkv -t 60.500") {
		t.Fatalf("unexpected preamble: %s", joined)
	}
	if args[len(args)-1] != "/out/show_1.mp3" {
		t.Fatalf("output must be last, got %q", args[len(args)-1])
	}
	if !strings.Contains(joined, "-vn") {
		t.Fatalf("audio defaults missing: %s", joined)
	}
	// Overrides appear after defaults so the last -b:a wins.
	if strings.LastIndex(joined, "-b:a 192k") < strings.LastIndex(joined, "-b:a 128k") {
		t.Fatalf("override must follow defaults: %s", joined)
	}
}

func TestFormatOutputName(t *testing.T) {
	tests := []struct {
		format Format
		part   string
		want   string
	}{
		{Format{Kind: KindVideo}, "show_1", "show_1.mp4"},
		{Format{Kind: KindAudio, Prefix: "audio-", Suffix: "_hq"}, "show_2", "audio-show_2_hq.mp3"},
		{Format{Kind: KindVideo, Suffix: "_720p"}, "dir/show_3", "show_3_720p.mp4"},
	}
	for _, tt := range tests {
		if got := tt.format.OutputName(tt.part); got != tt.want {
			t.Fatalf("OutputName(%q) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Audio "); err != nil || k != KindAudio {
		t.Fatalf("ParseKind audio = %v, %v", k, err)
	}
	if _, err := ParseKind("gif"); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}

func TestFormatsFromConfig(t *testing.T) {
	formats, err := FormatsFromConfig([]config.Format{
		{Type: "video"},
		{Type: "audio", Prefix: "audio-", Encoding: []string{"-b:a", "192k"}},
	})
	if err != nil {
		t.Fatalf("FormatsFromConfig: %v", err)
	}
	if len(formats) != 2 || formats[0].Kind != KindVideo || formats[1].Prefix != "audio-" {
		t.Fatalf("unexpected formats %+v", formats)
	}
	if _, err := FormatsFromConfig([]config.Format{{Type: "gif"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
