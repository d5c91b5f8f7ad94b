// Command ictal evaluates the temporal spike filter applied to per-segment
// seizure symptom predictions.
//
// Subcommands:
//   - evaluate: load a prediction table, smooth, and report specificity/recall per subset
//   - smooth: filter a single sequence
//   - runs: list, show, and delete saved evaluation runs
//   - plan: compute clip windows and frame batches for a recording
//   - transcripts: convert inference transcripts into a prediction table
//   - config: create or validate the configuration file
package main
