// Package smoothing implements the minimum-duration temporal filter applied to
// per-segment predictions before evaluation.
//
// Isolated positive segments produced by compression artifacts or
// night-vision noise show up as short runs of 1s. RemoveShortSpikes zeroes
// every maximal run shorter than the configured minimum and leaves everything
// else untouched.
package smoothing
