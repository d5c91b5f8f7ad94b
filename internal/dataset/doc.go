// Package dataset loads per-video prediction tables and selects evaluation
// subsets from them.
//
// Tables are CSV files with one row per video: an identifier, the annotated
// ground-truth sequence, the raw model prediction sequence, and optional
// recording tags. Sequence cells are decoded strictly; a row that fails to
// decode is recorded in Dataset.Skipped and logged instead of aborting the
// load, so one malformed video never hides the rest of the dataset.
package dataset
