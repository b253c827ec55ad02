package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

const defaultChunkSize = 32 * 1024

// ReadFile reads path fully, failing with ErrImageTooLarge once more than max
// bytes have been read (max <= 0 disables the check). The context is checked
// between chunks.
func ReadFile(ctx context.Context, path string, max int64, chunkSize int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil {
		if st.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		if max > 0 && st.Size() > max {
			return nil, fmt.Errorf("%w: %d bytes > %d", apperrors.ErrImageTooLarge, st.Size(), max)
		}
	}
	return DrainReader(ctx, &LimitedReader{R: f, Max: max}, chunkSize)
}

// DrainReader reads all bytes from r in chunks of chunkSize.
func DrainReader(ctx context.Context, r io.Reader, chunkSize int) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// LimitedReader wraps r and returns ErrImageTooLarge when more than Max bytes
// are available. Max <= 0 means unlimited.
type LimitedReader struct {
	R   io.Reader
	Max int64
	n   int64
}

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Max <= 0 {
		return l.R.Read(p)
	}
	if l.n > l.Max {
		return 0, apperrors.ErrImageTooLarge
	}
	// Allow one byte past the limit so an exact-size input still reaches EOF.
	if remain := l.Max - l.n + 1; int64(len(p)) > remain {
		p = p[:remain]
	}
	n, err := l.R.Read(p)
	l.n += int64(n)
	if l.n > l.Max {
		return n, apperrors.ErrImageTooLarge
	}
	return n, err
}
