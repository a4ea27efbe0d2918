package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploaded documents to a directory on disk. Files are keyed by
// an opaque uuid name so renames and duplicate display names never collide.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save streams the upload to disk and returns the stored name.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	storedName := uuid.NewString() + filepath.Ext(file.Filename)

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return storedName, nil
}

// Path returns the on-disk path for a stored name.
func (s *Store) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(storedName string) error {
	err := os.Remove(s.Path(storedName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
