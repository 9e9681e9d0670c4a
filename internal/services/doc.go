// Package services defines shared utilities consumed by the pipeline stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, part indexes, format labels and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (format, plan, environment, encode, storage, notification).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
