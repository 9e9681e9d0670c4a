package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	partIndexKey contextKey = "part_index"
	formatKey    contextKey = "format"
	stageKey     contextKey = "stage"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPart annotates context with the zero-based part index.
func WithPart(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, partIndexKey, index)
}

// PartFromContext returns the part index if present.
func PartFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(partIndexKey).(int)
	return v, ok
}

// WithFormat annotates context with the output format label.
func WithFormat(ctx context.Context, format string) context.Context {
	if format == "" {
		return ctx
	}
	return context.WithValue(ctx, formatKey, format)
}

// FormatFromContext returns the output format label if present.
func FormatFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(formatKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
