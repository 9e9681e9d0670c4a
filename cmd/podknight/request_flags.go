package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podknight/internal/config"
	"podknight/internal/cutplan"
	"podknight/internal/encoder"
	"podknight/internal/episode"
	"podknight/internal/timecode"
)

// requestFlags are shared by the commands that plan an episode.
type requestFlags struct {
	name      string
	outputDir string
	cuts      []string
	start     string
	end       string
	disabled  []int
	kinds     []string
	noUpload  bool
	videoJobs int
	audioJobs int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "Base name for output files (defaults to the source file name)")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for published files (defaults to the source directory)")
	flags.StringSliceVar(&f.cuts, "cut", nil, "Cut point as a timecode, or \"skip\" to drop the next interval (repeatable)")
	flags.StringVar(&f.start, "start", "", "Start of the first part (timecode)")
	flags.StringVar(&f.end, "end", "", "End of the last part (timecode)")
	flags.IntSliceVar(&f.disabled, "disable-part", nil, "Disable output part N, counting from 1 (repeatable)")
	flags.StringSliceVar(&f.kinds, "format", nil, "Only produce formats of this type: video or audio (repeatable)")
	flags.BoolVar(&f.noUpload, "no-upload", false, "Skip uploading even when storage is enabled")
	flags.IntVar(&f.videoJobs, "video-jobs", 0, "Override the number of concurrent video encodes")
	flags.IntVar(&f.audioJobs, "audio-jobs", -1, "Override the number of concurrent audio encodes (0 shares the video pool)")
}

func (f *requestFlags) request(cfg *config.Config, source string) (episode.Request, error) {
	req := episode.Request{
		Source:     source,
		OutputBase: strings.TrimSpace(f.name),
		OutputDir:  strings.TrimSpace(f.outputDir),
		Upload:     cfg.Storage.Enabled && !f.noUpload,
	}

	cuts, err := cutplan.ParseCutPoints(f.cuts)
	if err != nil {
		return episode.Request{}, err
	}
	req.CutPoints = cuts

	if req.Start, err = optionalTimecode("start", f.start); err != nil {
		return episode.Request{}, err
	}
	if req.End, err = optionalTimecode("end", f.end); err != nil {
		return episode.Request{}, err
	}

	specs, err := disableParts(cfg.PartSpecs(), f.disabled)
	if err != nil {
		return episode.Request{}, err
	}
	req.PartSpecs = specs

	formats, err := encoder.FormatsFromConfig(cfg.Formats)
	if err != nil {
		return episode.Request{}, err
	}
	if req.Formats, err = filterFormats(formats, f.kinds); err != nil {
		return episode.Request{}, err
	}

	if f.videoJobs > 0 || f.audioJobs >= 0 {
		limits := episode.Limits{Video: cfg.Encoder.VideoConcurrency, Audio: cfg.Encoder.AudioConcurrency}
		if f.videoJobs > 0 {
			limits.Video = f.videoJobs
		}
		if f.audioJobs >= 0 {
			limits.Audio = f.audioJobs
		}
		req.Limits = &limits
	}
	return req, nil
}

func optionalTimecode(name, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	seconds, err := timecode.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &seconds, nil
}

func disableParts(specs cutplan.PartSpecs, parts []int) (cutplan.PartSpecs, error) {
	for _, n := range parts {
		if n < 1 {
			return nil, fmt.Errorf("--disable-part: part numbers start at 1, got %d", n)
		}
		for len(specs) < n {
			specs = append(specs, cutplan.PartSpec{})
		}
		specs[n-1].Disabled = true
	}
	return specs, nil
}

func filterFormats(formats []encoder.Format, kinds []string) ([]encoder.Format, error) {
	if len(kinds) == 0 {
		return formats, nil
	}
	wanted := make(map[encoder.Kind]bool, len(kinds))
	for _, value := range kinds {
		kind, err := encoder.ParseKind(value)
		if err != nil {
			return nil, fmt.Errorf("--format: %w", err)
		}
		wanted[kind] = true
	}
	filtered := make([]encoder.Format, 0, len(formats))
	for _, format := range formats {
		if wanted[format.Kind] {
			filtered = append(filtered, format)
		}
	}
	return filtered, nil
}
