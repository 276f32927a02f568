// Package field holds the sampled scalar field the detection engine scans.
//
// A Field is built from a raw sample sequence by dropping non-finite entries;
// the surviving values are compacted into a contiguous slice while a roaring
// bitmap remembers which raw pixel indices were valid. All engine index
// arithmetic operates on the compacted sequence.
package field
