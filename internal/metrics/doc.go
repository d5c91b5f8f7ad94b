// Package metrics pools segment-level confusion counts across videos and
// derives specificity and recall percentages.
//
// Counts are summed over every compared position in a collection before any
// ratio is taken; per-video ratios are never averaged.
package metrics
