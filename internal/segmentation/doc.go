// Package segmentation plans how recordings are cut before inference: the
// overlapping clip windows fed to the video model and the sampled frames
// grouped into batches for the image model. It computes plans only; the
// cutting and decoding happen in the upstream tooling.
//
// SegmentIndexWindow maps a position in a prediction sequence back to the
// stretch of video it covers.
package segmentation
