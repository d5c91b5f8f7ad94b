// Package evaluation drives a before/after smoothing comparison over a loaded
// dataset.
//
// Runner smooths every record's raw predictions concurrently, then pools
// confusion counts per configured subset for both the raw and the smoothed
// predictions. Records whose sequences cannot be processed are moved to the
// report's skipped list with a warning; they never abort the run.
package evaluation
