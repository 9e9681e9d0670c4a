package preflight

import (
	"context"

	"podknight/internal/config"
	"podknight/internal/services"
	"podknight/internal/storage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	marker error
}

// Err converts a failed result into a classified error.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	marker := r.marker
	if marker == nil {
		marker = services.ErrValidation
	}
	return services.Wrap(marker, "checklist", r.Name, r.Detail, nil)
}

// RunAll executes every applicable check for the given config. store may be
// nil when storage is disabled.
func RunAll(ctx context.Context, cfg *config.Config, store storage.Store) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckEncoderBinaries(cfg.Encoder))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckFreeSpace("Free disk space", cfg.Paths.WorkDir, cfg.Encoder.MinFreeGiB))

	if cfg.Storage.Enabled {
		results = append(results, CheckBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Prefix))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
