// Package scan enumerates the source files a ratchet rule inspects.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/source"
)

// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultSkipDirs contains directory names that are skipped unless replaced with WithSkipDirs.
var DefaultSkipDirs = []string{
	".git",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
	".tox",
	".venv",
	"__pycache__",
	"build",
	"dist",
	"node_modules",
	"site-packages",
	"venv",
}

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("scan: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds its deadline.
	ErrScanTimeout = errors.New("scan: scan timeout")
)

// ScanError reports a root that cannot be scanned. It aborts the rule that hit it.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the root path that failed.
	Path string
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scanner walks one root for files with one extension.
type Scanner struct {
	src     *source.LocalSource
	ext     domain.FileExtension
	self    string
	skipSet map[string]bool
	options *ScanOptions
}

// New validates root and ext and returns a Scanner.
// A missing root, or a root that is not a directory, yields a *ScanError.
func New(root string, ext domain.FileExtension, opts ...ScanOption) (*Scanner, error) {
	if err := ext.Validate(); err != nil {
		return nil, err
	}

	src, err := source.NewLocalSource(root)
	if err != nil {
		return nil, &ScanError{Err: err, Path: root}
	}

	options := newOptions(opts)

	for _, pattern := range append(append([]string{}, options.ExcludeGlobs...), options.IncludeGlobs...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("scan: invalid glob pattern %q", pattern)
		}
	}

	self := ""
	if options.Self != "" {
		self = options.Self
		if !filepath.IsAbs(self) {
			self = filepath.Join(src.Root(), self)
		}
		self = filepath.Clean(self)
	}

	return &Scanner{
		src:     src,
		ext:     ext,
		self:    self,
		skipSet: buildSkipSet(options.SkipDirs),
		options: options,
	}, nil
}

// Source returns the validated source tree.
func (s *Scanner) Source() *source.LocalSource {
	return s.src
}

// Root returns the absolute scan root.
func (s *Scanner) Root() string {
	return s.src.Root()
}

// All lazily yields root-relative, slash-separated file paths.
// Directories are read in lexical order, so the sequence is deterministic.
// A non-nil error is yielded once, when the context ends the walk early.
// Unreadable entries are logged and skipped.
func (s *Scanner) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rootPath := s.src.Root()
		stopped := false

		err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if walkErr != nil {
				s.options.Logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
				if d != nil && d.IsDir() && path != rootPath {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if shouldSkipDir(path, rootPath, s.skipSet) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !s.ext.Matches(d.Name()) {
				return nil
			}

			if s.self != "" && filepath.Clean(path) == s.self {
				return nil
			}

			relPath, err := filepath.Rel(rootPath, path)
			if err != nil {
				s.options.Logger.Warn("skipping path outside root", "path", path, "error", err)
				return nil
			}
			relPath = filepath.ToSlash(relPath)

			if len(s.options.IncludeGlobs) > 0 && !matchesAnyPattern(relPath, s.options.IncludeGlobs) {
				return nil
			}
			if matchesAnyPattern(relPath, s.options.ExcludeGlobs) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				s.options.Logger.Warn("skipping file without info", "path", relPath, "error", err)
				return nil
			}
			if info.Size() > s.options.MaxFileSize {
				s.options.Logger.Debug("skipping oversized file", "path", relPath, "size", info.Size())
				return nil
			}

			if !yield(relPath, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if stopped || err == nil {
			return
		}
		yield("", contextError(err))
	}
}

// Files collects every file the scanner yields.
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	var files []string
	for path, err := range s.All(ctx) {
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// Files is a shortcut for New followed by Scanner.Files.
func Files(ctx context.Context, root string, ext domain.FileExtension, opts ...ScanOption) ([]string, error) {
	scanner, err := New(root, ext, opts...)
	if err != nil {
		return nil, err
	}
	return scanner.Files(ctx)
}

func contextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrScanTimeout
	case errors.Is(err, context.Canceled):
		return ErrScanCancelled
	default:
		return err
	}
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func shouldSkipDir(path, rootPath string, skipSet map[string]bool) bool {
	if path == rootPath {
		return false
	}

	base := filepath.Base(path)
	return skipSet[base]
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
