// Package logging assembles structured slog loggers and formatting helpers used
// across ictal commands.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so evaluation code can tag log
// lines with run IDs, video IDs, and subset names. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
