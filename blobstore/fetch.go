package blobstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

const fetchChunkSize = 1 << 20

// Fetch copies the named blob to a local path, reporting progress through the
// logger at most every couple of seconds. The destination is written through
// a LocalStore, so a failed fetch leaves no partial file behind.
func Fetch(ctx context.Context, src Store, name string, local *LocalStore, dest string, logger *slog.Logger) (int64, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	blob, err := src.Open(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer blob.Close()

	w, err := local.Create(ctx, dest)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", name, err)
	}

	total := blob.Size()
	progress := rate.Sometimes{First: 1, Interval: 2 * time.Second}

	buf := make([]byte, fetchChunkSize)
	var written int64
	for written < total {
		if err := ctx.Err(); err != nil {
			w.Close()
			local.Delete(ctx, dest)
			return written, err
		}

		chunk := buf
		if rem := total - written; rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}
		n, err := blob.ReadAt(chunk, written)
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				w.Close()
				local.Delete(ctx, dest)
				return written, fmt.Errorf("fetch %s: %w", name, werr)
			}
			written += int64(n)
		}
		if err != nil && err != io.EOF {
			w.Close()
			local.Delete(ctx, dest)
			return written, fmt.Errorf("fetch %s: %w", name, err)
		}
		if err == io.EOF && written < total {
			w.Close()
			local.Delete(ctx, dest)
			return written, fmt.Errorf("fetch %s: short read at %d of %d bytes", name, written, total)
		}

		progress.Do(func() {
			logger.InfoContext(ctx, "fetching dataset",
				slog.String("name", name),
				slog.Int64("bytes", written),
				slog.Int64("total", total),
			)
		})
	}

	if err := w.Close(); err != nil {
		return written, fmt.Errorf("fetch %s: %w", name, err)
	}
	logger.InfoContext(ctx, "dataset fetched",
		slog.String("name", name),
		slog.String("dest", dest),
		slog.Int64("bytes", written),
	)
	return written, nil
}
