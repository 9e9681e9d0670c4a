package episode

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"podknight/internal/cutplan"
	"podknight/internal/encoder"
	"podknight/internal/logging"
	"podknight/internal/media/ffprobe"
	"podknight/internal/services"
)

// Prepare probes the source, plans its parts and assigns a run ID. Nothing
// is written to disk.
func (o *Orchestrator) Prepare(ctx context.Context, req Request) (*Run, error) {
	req, err := req.withDefaults()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "prepare", "request", "paths could not be resolved", err)
	}
	if req.Source == "" {
		return nil, services.Wrap(services.ErrValidation, "prepare", "request", "source path is required", nil)
	}
	if len(req.Formats) == 0 {
		return nil, services.Wrap(services.ErrValidation, "prepare", "request", "at least one output format is required", nil)
	}

	probe, err := ffprobe.Inspect(ctx, o.cfg.Encoder.FFprobeBinary, req.Source)
	if err != nil {
		return nil, err
	}
	duration := probe.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return nil, services.Wrap(services.ErrFormat, "prepare", "probe",
			fmt.Sprintf("source duration %q is not usable", probe.Format.Duration), nil)
	}
	if probe.VideoStreamCount() == 0 {
		for _, f := range req.Formats {
			if f.Kind == encoder.KindVideo {
				return nil, services.Wrap(services.ErrInvalidPlan, "prepare", "formats",
					"source has no video stream but a video format is configured", nil)
			}
		}
	}

	plan, err := cutplan.Build(cutplan.Input{
		SourceDuration: duration,
		Start:          req.Start,
		End:            req.End,
		CutPoints:      req.CutPoints,
		PartSpecs:      req.PartSpecs,
		BaseName:       req.OutputBase,
	})
	if err != nil {
		return nil, err
	}
	if len(plan.Parts) == 0 {
		return nil, services.Wrap(services.ErrInvalidPlan, "prepare", "plan",
			"every part is disabled; nothing to encode", nil)
	}

	outputs := planOutputs(req, plan, o.cfg.Storage.Prefix)
	seen := make(map[string]Output, len(outputs))
	for _, out := range outputs {
		if prev, ok := seen[out.Path]; ok {
			return nil, services.Wrap(services.ErrInvalidPlan, "prepare", "outputs",
				fmt.Sprintf("parts %d and %d both write %s", prev.Part.Index+1, out.Part.Index+1, out.Name), nil)
		}
		seen[out.Path] = out
	}

	run := &Run{
		ID:      uuid.NewString(),
		Request: req,
		Probe:   probe,
		Plan:    plan,
		Outputs: outputs,
	}
	o.logger.Info("run prepared",
		logging.String(logging.FieldRunID, run.ID),
		logging.String("source", req.Source),
		logging.Float64("source_seconds", duration),
		logging.Int("parts", len(plan.Parts)),
		logging.Int("outputs", len(outputs)),
	)
	return run, nil
}
