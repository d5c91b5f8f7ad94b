// Package transcript reads the text logs written by the per-symptom inference
// loop and turns them into raw prediction sequences.
//
// Each log holds one block per segment: a header naming the time range and
// the clip or frame batch, the observe turn, the decide turn and the segment's
// inference time. The decide answer becomes the segment's 0/1 verdict.
package transcript
