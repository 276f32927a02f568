package fits

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/skyloom/echoscan/internal/mmap"
)

// Layout describes the declared shape of the payload.
type Layout struct {
	Axes           int // NAXIS
	Length         int // NAXIS1, 0 if undeclared
	BitsPerElement int // BITPIX
}

// Image is a parsed primary HDU: the flat sample sequence plus its layout.
type Image struct {
	Samples []float64
	Layout  Layout
	Header  *Header
}

// elementWidth maps a BITPIX code to the payload element width in bytes.
// Unrecognized codes fall back to 32-bit float, matching common map files
// that omit or mangle the keyword.
func elementWidth(bitpix int) int {
	switch bitpix {
	case -64:
		return 8
	case -32, 32:
		return 4
	default:
		return 4
	}
}

func decodeElement(data []byte, bitpix int) float64 {
	switch bitpix {
	case -64:
		return math.Float64frombits(binary.BigEndian.Uint64(data))
	case 32:
		return float64(int32(binary.BigEndian.Uint32(data)))
	default: // -32 and unrecognized codes
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data)))
	}
}

// decodePayload reinterprets raw big-endian bytes as a float64 sample slice.
// Trailing bytes that do not fill a whole element are ignored, as are any
// elements beyond a declared first-axis length.
func decodePayload(data []byte, layout Layout) ([]float64, error) {
	width := elementWidth(layout.BitsPerElement)
	n := len(data) / width
	if n == 0 {
		return nil, formatErr("payload shorter than one element", nil)
	}
	if layout.Length > 0 && n > layout.Length {
		n = layout.Length
	}

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		samples[i] = decodeElement(data[i*width:], layout.BitsPerElement)
	}
	return samples, nil
}

func layoutFromHeader(h *Header) Layout {
	var l Layout
	if v, ok := h.Int("NAXIS"); ok {
		l.Axes = int(v)
	}
	if v, ok := h.Int("NAXIS1"); ok {
		l.Length = int(v)
	}
	if v, ok := h.Int("BITPIX"); ok {
		l.BitsPerElement = int(v)
	} else {
		l.BitsPerElement = -32
	}
	return l
}

// Read parses a complete header+payload stream.
func Read(r io.Reader) (*Image, error) {
	br := bufio.NewReaderSize(r, BlockSize)

	h, err := ParseHeader(br)
	if err != nil {
		return nil, err
	}

	// Skip header block padding.
	pad := h.PaddedSize - int64(h.Len())*CardSize
	if _, err := io.CopyN(io.Discard, br, pad); err != nil {
		return nil, formatErr("header padding truncated", err)
	}

	payload, err := io.ReadAll(br)
	if err != nil {
		return nil, formatErr("payload read failed", err)
	}

	layout := layoutFromHeader(h)
	samples, err := decodePayload(payload, layout)
	if err != nil {
		return nil, err
	}

	return &Image{Samples: samples, Layout: layout, Header: h}, nil
}

// ReadBytes parses an in-memory header+payload buffer without copying the
// payload region before decode.
func ReadBytes(data []byte) (*Image, error) {
	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) <= h.PaddedSize {
		return nil, formatErr("payload shorter than one element", nil)
	}

	layout := layoutFromHeader(h)
	samples, err := decodePayload(data[h.PaddedSize:], layout)
	if err != nil {
		return nil, err
	}
	return &Image{Samples: samples, Layout: layout, Header: h}, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// Open reads a map file from disk. Gzip-compressed files are detected by
// magic bytes and streamed through the decompressor; plain files are
// memory-mapped and decoded in place.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, formatErr("open failed", err)
	}

	head := make([]byte, 2)
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, formatErr("file too short", err)
	}

	if bytes.Equal(head, gzipMagic) {
		defer f.Close()
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, formatErr("seek failed", err)
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, formatErr("gzip open failed", err)
		}
		defer zr.Close()
		return Read(zr)
	}

	f.Close()
	m, err := mmap.Open(path)
	if err != nil {
		return nil, formatErr("mmap failed", err)
	}
	defer m.Close()
	return ReadBytes(m.Data)
}
