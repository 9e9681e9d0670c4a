package main

import (
	"bytes"
	"strings"
	"testing"

	"podknight/internal/cutplan"
	"podknight/internal/encoder"
	"podknight/internal/testsupport"
)

func TestDisablePartsExtendsSpecs(t *testing.T) {
	specs, err := disableParts(cutplan.PartSpecs{{Suffix: "_intro"}}, []int{3})
	if err != nil {
		t.Fatalf("disableParts: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}
	if specs[0].Suffix != "_intro" || specs[0].Disabled {
		t.Fatalf("first spec changed: %+v", specs[0])
	}
	if specs.Disabled(1) || !specs.Disabled(2) {
		t.Fatalf("expected only part 3 disabled: %+v", specs)
	}
}

func TestDisablePartsRejectsZero(t *testing.T) {
	if _, err := disableParts(nil, []int{0}); err == nil {
		t.Fatalf("expected error for part 0")
	}
}

func TestFilterFormats(t *testing.T) {
	formats := []encoder.Format{{Kind: encoder.KindVideo}, {Kind: encoder.KindAudio}, {Kind: encoder.KindAudio, Suffix: "_hq"}}

	all, err := filterFormats(formats, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all formats, got %d err=%v", len(all), err)
	}
	audio, err := filterFormats(formats, []string{"AUDIO"})
	if err != nil {
		t.Fatalf("filterFormats: %v", err)
	}
	if len(audio) != 2 || audio[0].Kind != encoder.KindAudio || audio[1].Suffix != "_hq" {
		t.Fatalf("unexpected audio formats %+v", audio)
	}
	if _, err := filterFormats(formats, []string{"gif"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestRequestFromFlags(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStorage("episodes", "shows"))
	flags := requestFlags{
		name:      "ep1",
		cuts:      []string{"10:00", "skip", "12:00"},
		start:     "0:30",
		end:       "40:00",
		videoJobs: 3,
		audioJobs: -1,
	}
	req, err := flags.request(cfg, "/media/ep1.mov")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !req.Upload {
		t.Fatalf("expected upload when storage is enabled")
	}
	if len(req.CutPoints) != 3 || !req.CutPoints[1].Skip || req.CutPoints[2].Seconds != 720 {
		t.Fatalf("unexpected cut points %+v", req.CutPoints)
	}
	if req.Start == nil || *req.Start != 30 || req.End == nil || *req.End != 2400 {
		t.Fatalf("unexpected bounds start=%v end=%v", req.Start, req.End)
	}
	if len(req.Formats) != len(cfg.Formats) {
		t.Fatalf("expected %d formats, got %d", len(cfg.Formats), len(req.Formats))
	}
	if req.Limits == nil || req.Limits.Video != 3 || req.Limits.Audio != cfg.Encoder.AudioConcurrency {
		t.Fatalf("unexpected limits %+v", req.Limits)
	}

	flags.noUpload = true
	flags.videoJobs = 0
	req, err = flags.request(cfg, "/media/ep1.mov")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Upload || req.Limits != nil {
		t.Fatalf("expected no upload and default limits, got upload=%v limits=%+v", req.Upload, req.Limits)
	}
}

func TestRequestRejectsBadTimecode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	flags := requestFlags{end: "later", audioJobs: -1}
	if _, err := flags.request(cfg, "/media/ep1.mov"); err == nil || !strings.Contains(err.Error(), "--end") {
		t.Fatalf("expected --end error, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "maybe\n": false}
	for input, want := range cases {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(input), &out, "Proceed?")
		if err != nil {
			t.Fatalf("confirm(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("confirm(%q) = %v, want %v", input, got, want)
		}
		if !strings.HasPrefix(out.String(), "Proceed? [y/N] ") {
			t.Fatalf("unexpected prompt %q", out.String())
		}
	}
}
