// Package sequence defines the per-segment binary prediction sequence shared by
// the smoothing filter, the metrics evaluator, and the dataset loader.
//
// A Binary holds one 0/1 value per fixed-duration video segment in temporal
// order. Parse performs the strict, typed decoding of list-literal cells such
// as "[1, 0, 1]" that appear in prediction spreadsheets; anything outside
// {0, 1} is rejected with ErrInvalidInput rather than coerced.
package sequence
