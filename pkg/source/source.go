// Package source provides read-only access to a local source tree.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotDirectory is returned when a source root exists but is not a directory.
var ErrNotDirectory = errors.New("source: root is not a directory")

// LocalSource reads files below a validated root directory.
// Nothing in this package writes to the tree.
type LocalSource struct {
	root string
}

// NewLocalSource validates that root exists and is a directory.
// The returned source holds the absolute, cleaned root path.
func NewLocalSource(root string) (*LocalSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	return &LocalSource{root: abs}, nil
}

// Root returns the absolute root path.
func (s *LocalSource) Root() string {
	return s.root
}

// Abs joins a root-relative path onto the root.
func (s *LocalSource) Abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Open opens a file by its root-relative path.
func (s *LocalSource) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Abs(relPath))
}

// ReadFile reads a file by its root-relative path.
func (s *LocalSource) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	reader, err := s.Open(ctx, relPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", relPath, err)
	}
	return content, nil
}
