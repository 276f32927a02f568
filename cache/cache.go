// Package cache keeps parsed fields on disk so repeated runs against the
// same map skip the format decode.
//
// Entries are keyed by the source path plus its size and mtime; a touched
// source invalidates its entry. Payloads are lz4 frames holding the raw
// float64 samples.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pierrec/lz4/v4"

	"github.com/skyloom/echoscan/field"
)

// ErrMiss is returned by Get when no usable entry exists.
var ErrMiss = errors.New("cache: miss")

const (
	magic   = "ECF1"
	entExt  = ".ecf"
	dirPerm = 0o755
)

// Cache is a directory of compressed field payloads.
// The zero value is unusable; call New.
type Cache struct {
	dir string
}

// New opens (and if needed creates) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// key derives the entry filename from the source identity.
func (c *Cache) key(source string, info os.FileInfo) string {
	h := sha256.New()
	io.WriteString(h, source)
	io.WriteString(h, "\x00")
	io.WriteString(h, strconv.FormatInt(info.Size(), 10))
	io.WriteString(h, "\x00")
	io.WriteString(h, strconv.FormatInt(info.ModTime().UnixNano(), 10))
	return hex.EncodeToString(h.Sum(nil)[:16]) + entExt
}

// Get returns the cached field for source, or ErrMiss.
func (c *Cache) Get(source string) (*field.Field, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("cache: stat source: %w", err)
	}
	path := filepath.Join(c.dir, c.key(source, info))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache: open entry: %w", err)
	}
	defer f.Close()

	samples, err := decodePayload(f)
	if err != nil {
		// A corrupt entry behaves like a miss; the caller re-parses and
		// overwrites it.
		return nil, ErrMiss
	}
	return field.New(samples), nil
}

// Put stores the field's samples for source. Best effort: a failed write
// leaves no partial entry behind.
func (c *Cache) Put(source string, f *field.Field) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("cache: stat source: %w", err)
	}
	path := filepath.Join(c.dir, c.key(source, info))

	tmp, err := os.CreateTemp(c.dir, "put-*")
	if err != nil {
		return fmt.Errorf("cache: temp entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encodePayload(tmp, f.Samples()); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cache: commit entry: %w", err)
	}
	return nil
}

// Purge removes every entry.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("cache: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != entExt {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("cache: remove entry: %w", err)
		}
	}
	return nil
}

func encodePayload(w io.Writer, samples []float64) error {
	var head [12]byte
	copy(head[:4], magic)
	binary.LittleEndian.PutUint64(head[4:], uint64(len(samples)))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}

	zw := lz4.NewWriter(w)
	buf := make([]byte, 8*1024)
	for off := 0; off < len(samples); {
		n := len(buf) / 8
		if rem := len(samples) - off; rem < n {
			n = rem
		}
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(samples[off+i]))
		}
		if _, err := zw.Write(buf[:8*n]); err != nil {
			return err
		}
		off += n
	}
	return zw.Close()
}

func decodePayload(r io.Reader) ([]float64, error) {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	if string(head[:4]) != magic {
		return nil, fmt.Errorf("cache: bad entry magic %q", head[:4])
	}
	count := binary.LittleEndian.Uint64(head[4:])
	const maxSamples = 1 << 31
	if count > maxSamples {
		return nil, fmt.Errorf("cache: entry claims %d samples", count)
	}

	zr := lz4.NewReader(r)
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != 8*count {
		return nil, fmt.Errorf("cache: entry payload is %d bytes, want %d", len(raw), 8*count)
	}
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return samples, nil
}
