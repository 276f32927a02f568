// Package engine implements the echo-correlation detection pipeline.
//
// A Detector draws a seeded set of patch start indices from a field, pairs
// each patch with candidates at fractional-wrap or caller-supplied angular
// offsets, scores every pair with the Pearson correlation coefficient, ranks
// the retained matches, and assesses the top-ranked subset with a one-sample
// t-test against a zero-mean null.
//
// The pipeline is deterministic for a fixed field, seed and configuration,
// including when the correlation loop runs on multiple workers.
package engine
