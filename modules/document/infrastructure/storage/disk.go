package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
)

type DiskStorage struct {
	dir string
}

// NewDiskStorage keeps documents as flat files under dir.
func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{dir: dir}
}

// Save writes r under a random name that keeps the lowercased extension.
func (s *DiskStorage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", errors.Wrap(err, "create documents dir")
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, name)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "create document")
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "write document")
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "close document")
	}
	return name, nil
}

func (s *DiskStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errors.Wrapf(document.ErrNotFound, "invalid stored name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

type diskFile struct {
	*os.File
	modTime time.Time
}

func (f diskFile) ModTime() time.Time {
	return f.modTime
}

func (s *DiskStorage) Open(name string) (document.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(document.ErrNotFound, "file %s is missing", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "stat document")
	}
	return diskFile{File: f, modTime: info.ModTime()}, nil
}

// Remove ignores files that are already gone.
func (s *DiskStorage) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove document")
	}
	return nil
}
