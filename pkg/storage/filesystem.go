package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// LocalStorage persists bucket objects on disk under a base directory. It is
// used in development where files are served from PublicBase by the web server.
type LocalStorage struct {
	baseDir    string
	publicBase string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBase string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicBase == "" {
		publicBase = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Dir returns the base directory.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Put copies body into <base>/<bucket>/<name>.
func (s *LocalStorage) Put(ctx context.Context, bucket, name, _ string, body io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare bucket directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("write object stream: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalStorage) Open(bucket, name string) (*os.File, error) {
	path, err := s.resolve(bucket, name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored object if present.
func (s *LocalStorage) Remove(_ context.Context, bucket, name string) error {
	path, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object file: %w", err)
	}
	return nil
}

// PublicURL returns the URL the web server exposes the object under.
func (s *LocalStorage) PublicURL(bucket, name string) string {
	return s.publicBase + "/" + bucket + "/" + name
}

func (s *LocalStorage) resolve(bucket, name string) (string, error) {
	rel := filepath.Clean(filepath.Join(bucket, name))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid object path")
	}
	return filepath.Join(s.baseDir, rel), nil
}
