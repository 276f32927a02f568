// Package fits reads the primary data unit of FITS-style sky-map files.
//
// Only the subset needed for flattened map payloads is implemented: the
// 80-byte ASCII header cards of the primary HDU, the 2880-byte block
// alignment, and a flat big-endian numeric payload whose element type is
// selected by BITPIX. Table extensions, scaling keywords and multi-axis
// payloads beyond the first axis length are not interpreted.
//
// Compressed maps (.fits.gz) are detected by magic bytes and decompressed
// transparently. Uncompressed local files are memory-mapped so the payload
// is decoded straight out of the page cache.
package fits
