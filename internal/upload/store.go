// Package upload stores product image files on the local filesystem. The
// public URL recorded for an image is always /uploads/images/<name>,
// independent of the physical base directory, and is served back through the
// router's static file mount.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which stored images are served.
const URLPrefix = "/uploads/images/"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SavedFile describes a stored image file.
type SavedFile struct {
	FileName  string
	Extension string
	URL       string
}

// Store writes uploaded images into a base directory under random names.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the base directory if needed and returns a Store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the physical base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the uploaded content under a freshly generated name that keeps
// the original extension. The extension must be on the image allow-list.
func (s *Store) Save(src io.Reader, originalName string) (SavedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return SavedFile{}, fmt.Errorf("upload: unsupported file extension %q", ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return SavedFile{}, fmt.Errorf("upload: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return SavedFile{}, fmt.Errorf("upload: write file: %w", err)
	}

	return SavedFile{FileName: name, Extension: ext, URL: URLPrefix + name}, nil
}

// Remove deletes a stored file best-effort. Failures are logged and never
// propagated; this is the compensating action when product creation fails
// after the image was already written.
func (s *Store) Remove(fileName string) {
	if fileName == "" {
		return
	}
	path := filepath.Join(s.dir, filepath.Base(fileName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("remove uploaded image", slog.String("file", fileName), slog.Any("error", err))
	}
}
