package episode

import (
	"fmt"
	"path/filepath"
	"strings"

	"podknight/internal/cutplan"
	"podknight/internal/encoder"
	"podknight/internal/media/ffprobe"
	"podknight/internal/storage"
	"podknight/internal/textutil"
)

// Limits overrides the configured encoder pool sizes. Audio 0 shares the
// video pool.
type Limits struct {
	Video int
	Audio int
}

// Request is a fully resolved processing request.
type Request struct {
	Source string
	// OutputBase names the parts; it defaults to the source file name
	// without its extension.
	OutputBase string
	// OutputDir receives the published files; it defaults to the source
	// directory.
	OutputDir string
	Start     *float64
	End       *float64
	CutPoints []cutplan.CutPoint
	PartSpecs cutplan.PartSpecs
	Formats   []encoder.Format
	Upload    bool
	Limits    *Limits
}

// withDefaults fills the derived fields. Paths come back absolute; the
// encoder runs with the scratch directory as its working directory.
func (r Request) withDefaults() (Request, error) {
	r.Source = strings.TrimSpace(r.Source)
	if r.Source != "" {
		abs, err := filepath.Abs(r.Source)
		if err != nil {
			return r, fmt.Errorf("resolve source path: %w", err)
		}
		r.Source = abs
	}
	if strings.TrimSpace(r.OutputBase) == "" {
		base := filepath.Base(r.Source)
		r.OutputBase = strings.TrimSuffix(base, filepath.Ext(base))
	}
	r.OutputBase = textutil.SanitizeFileName(r.OutputBase)
	if strings.TrimSpace(r.OutputDir) == "" {
		r.OutputDir = filepath.Dir(r.Source)
	}
	abs, err := filepath.Abs(r.OutputDir)
	if err != nil {
		return r, fmt.Errorf("resolve output directory: %w", err)
	}
	r.OutputDir = abs
	return r, nil
}

// Output is one planned file: a part rendered in a format.
type Output struct {
	Part   cutplan.Part
	Format encoder.Format
	Name   string
	Path   string
	Key    string
}

// ID identifies the output inside a run.
func (o Output) ID() string {
	return fmt.Sprintf("%d/%s", o.Part.Index, o.Name)
}

// Run is a prepared request ready for Execute.
type Run struct {
	ID      string
	Request Request
	Probe   ffprobe.Result
	Plan    cutplan.Plan
	Outputs []Output
}

// Name is the display name of the run.
func (r *Run) Name() string {
	return r.Request.OutputBase
}

// OutputsFor returns the planned outputs of one part in format order.
func (r *Run) OutputsFor(part cutplan.Part) []Output {
	var outs []Output
	for _, out := range r.Outputs {
		if out.Part.Index == part.Index {
			outs = append(outs, out)
		}
	}
	return outs
}

// Summary renders the plan table followed by the output files.
func (r *Run) Summary() string {
	var b strings.Builder
	b.WriteString(r.Plan.Summary())
	b.WriteString("\nOutputs:\n")
	for _, out := range r.Outputs {
		fmt.Fprintf(&b, "  %s\n", out.Path)
	}
	return b.String()
}

func planOutputs(req Request, plan cutplan.Plan, keyPrefix string) []Output {
	outputs := make([]Output, 0, len(plan.Parts)*len(req.Formats))
	for _, part := range plan.Parts {
		for _, format := range req.Formats {
			name := format.OutputName(part.Filename)
			outputs = append(outputs, Output{
				Part:   part,
				Format: format,
				Name:   name,
				Path:   filepath.Join(req.OutputDir, name),
				Key:    storage.KeyFor(keyPrefix, name),
			})
		}
	}
	return outputs
}
