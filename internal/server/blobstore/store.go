// Package blobstore keeps the raw bytes of uploaded files. Records live in
// the database; a Store only knows names and bytes.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
)

// ErrInvalidName is returned for names that could escape the store.
var ErrInvalidName = errors.New("invalid blob name")

// Store persists blobs by name. A blob written by Put becomes visible to
// Open only once it is complete.
type Store interface {
	// Put writes at most limit bytes from r under name. A stream longer than
	// limit fails with common.ErrPayloadTooLarge and leaves nothing behind.
	Put(ctx context.Context, name string, r io.Reader, limit int64) (int64, error)
	// Open fails with common.ErrorNotFound when the blob does not exist.
	Open(ctx context.Context, name string) (*Blob, error)
	// Delete treats a missing blob as success.
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]BlobInfo, error)
}

// Blob is an open blob. The caller must close Reader.
type Blob struct {
	Reader  io.ReadCloser
	Size    int64
	ModTime time.Time
}

type BlobInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ValidName reports whether name is a single, plain path element.
func ValidName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`+"\x00")
}

func checkName(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// copyLimited copies r into w and fails with common.ErrPayloadTooLarge as
// soon as more than limit bytes have been read.
func copyLimited(w io.Writer, r io.Reader, limit int64) (int64, error) {
	n, err := io.Copy(w, io.LimitReader(r, limit+1))
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, common.ErrPayloadTooLarge
	}
	return n, nil
}

// spool buffers r into a temporary file so object stores get a seekable
// body with a known length. cleanup closes and removes the file.
func spool(r io.Reader, limit int64) (f *os.File, n int64, cleanup func(), err error) {
	f, err = os.CreateTemp("", "mediavault-spool-*")
	if err != nil {
		return nil, 0, nil, err
	}
	cleanup = func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	n, err = copyLimited(f, r, limit)
	if err != nil {
		cleanup()
		return nil, n, nil, err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, n, nil, err
	}
	return f, n, cleanup, nil
}
