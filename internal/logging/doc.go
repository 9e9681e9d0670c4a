// Package logging assembles structured slog loggers for podknight.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag lines with the run ID, part index, and
// format carried on the context. NewNop serves tests and components built
// without a logger.
package logging
