package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements the Storage interface for local filesystem
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new local file storage instance rooted at
// outputDir, creating the directory if needed.
func NewLocalStorage(outputDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return &LocalStorage{outputDir: outputDir}, nil
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.outputDir, filepath.FromSlash(name))
}

// Save writes the reader's contents to a file under the output dir.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Open returns a reader for a stored file.
func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(_ context.Context, name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// List returns the names of stored files with the given prefix.
func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	var results []string
	err := filepath.WalkDir(s.outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.outputDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(name, prefix) {
			results = append(results, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.outputDir, err)
	}
	return results, nil
}

// Delete removes a stored file.
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// Close is a no-op for local storage.
func (s *LocalStorage) Close() error {
	return nil
}
