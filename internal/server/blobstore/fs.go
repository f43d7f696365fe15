package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/filex"
)

const tempPrefix = ".upload-"

// FSStore keeps blobs as files in a single directory. Writes go to a hidden
// temp file in the same directory and are renamed into place when complete.
type FSStore struct {
	dir string
}

// NewFSStore creates dir if needed.
func NewFSStore(dir string) (*FSStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FSStore{dir: abs}, nil
}

// Dir is the absolute blob directory.
func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) Put(ctx context.Context, name string, r io.Reader, limit int64) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := copyLimited(tmp, r, limit)
	if err != nil {
		return n, err
	}
	if err := ctx.Err(); err != nil {
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return n, err
	}
	committed = true
	return n, nil
}

func (s *FSStore) Open(_ context.Context, name string) (*Blob, error) {
	if !ValidName(name) {
		return nil, common.ErrorNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, common.ErrorNotFound
	}
	return &Blob{Reader: f, Size: st.Size(), ModTime: st.ModTime()}, nil
}

func (s *FSStore) Delete(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List skips directories and in-flight temp files.
func (s *FSStore) List(_ context.Context) ([]BlobInfo, error) {
	items, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []BlobInfo
	for _, it := range items {
		if it.IsDir() || strings.HasPrefix(it.Name(), ".") {
			continue
		}
		info, err := it.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, BlobInfo{Name: it.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}
