// Package filestore persists submission uploads.
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/content"
)

type diskStore struct {
	dir string
}

var _ content.FileStore = (*diskStore)(nil) // interface compliance check

// NewDiskStore stores files under dir, creating it if needed.
func NewDiskStore(dir string) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &diskStore{dir: dir}, nil
}

// Save writes the file and returns the name it was recorded under.
// Stored names are flat; name must already be sanitized.
func (s *diskStore) Save(name string, r io.Reader) (string, error) {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return name, nil
}

// Path resolves a recorded name back to its on-disk location.
func (s *diskStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
