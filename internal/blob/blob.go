// Package blob stores receipt files outside of the database.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists receipt files and returns an opaque reference for each.
type Store interface {
	// Save writes the content and returns the reference to retrieve it
	// with. The extension of the original file name is kept so that
	// clients can infer the content type.
	Save(name string, content io.Reader) (ref string, err error)

	// Open returns a reader for the stored file.
	Open(ref string) (io.ReadCloser, error)
}

// FilesystemStore stores receipts as files in a single directory.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates the directory if needed.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create receipt directory: %w", err)
	}

	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Save(name string, content io.Reader) (string, error) {
	// The reference is generated, never derived from the user supplied
	// name. Only the extension is kept.
	ref := uuid.NewString() + strings.ToLower(filepath.Ext(name))

	file, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	defer file.Close()

	_, err = io.Copy(file, content)
	if err != nil {
		return "", err
	}

	return ref, nil
}

func (s *FilesystemStore) Open(ref string) (io.ReadCloser, error) {
	// Reject path traversal in references read back from the database
	if ref != filepath.Base(ref) {
		return nil, os.ErrNotExist
	}

	return os.Open(filepath.Join(s.dir, ref))
}
