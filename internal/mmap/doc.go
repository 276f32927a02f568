// Package mmap provides read-only memory-mapped file access.
//
// Sky-map files are routinely hundreds of megabytes; mapping them lets the
// FITS payload decoder reinterpret the raw bytes without copying them through
// kernel buffers first.
//
// Unix platforms use mmap(2); Windows uses CreateFileMapping/MapViewOfFile.
// A File is safe for concurrent reads, but callers must not touch Data after
// Close returns.
package mmap
