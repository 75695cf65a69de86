package scan

import (
	"log/slog"
	"slices"
)

// ScanOptions configures file discovery.
type ScanOptions struct {
	// SkipDirs holds directory base names that are never descended into.
	// Defaults to DefaultSkipDirs.
	SkipDirs []string

	// ExcludeGlobs holds doublestar patterns, relative to the root, for paths to drop.
	ExcludeGlobs []string

	// IncludeGlobs restricts discovery to matching paths. Empty means everything.
	IncludeGlobs []string

	// MaxFileSize is the maximum file size in bytes; larger files are skipped.
	MaxFileSize int64

	// Self is the file that is always excluded, usually the rule table's own source.
	Self string

	// Logger receives skipped-entry diagnostics.
	Logger *slog.Logger
}

// ScanOption is a functional option for configuring a Scanner.
type ScanOption func(*ScanOptions)

// WithSkipDirs replaces the skipped directory names.
func WithSkipDirs(dirs []string) ScanOption {
	return func(o *ScanOptions) {
		o.SkipDirs = slices.Clone(dirs)
	}
}

// WithExtraSkipDirs adds directory names to the current skip list.
func WithExtraSkipDirs(dirs []string) ScanOption {
	return func(o *ScanOptions) {
		o.SkipDirs = append(o.SkipDirs, dirs...)
	}
}

// WithExcludeGlobs sets doublestar patterns for paths to drop.
func WithExcludeGlobs(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.ExcludeGlobs = patterns
	}
}

// WithIncludeGlobs sets doublestar patterns that paths must match.
func WithIncludeGlobs(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.IncludeGlobs = patterns
	}
}

// WithMaxFileSize sets the maximum file size to read.
// Negative values are ignored.
func WithMaxFileSize(size int64) ScanOption {
	return func(o *ScanOptions) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithSelf excludes one file from every scan.
// Relative paths are resolved against the scan root.
func WithSelf(path string) ScanOption {
	return func(o *ScanOptions) {
		o.Self = path
	}
}

// WithLogger sets the logger for skipped-entry diagnostics.
func WithLogger(logger *slog.Logger) ScanOption {
	return func(o *ScanOptions) {
		o.Logger = logger
	}
}

func newOptions(opts []ScanOption) *ScanOptions {
	options := &ScanOptions{
		SkipDirs: slices.Clone(DefaultSkipDirs),
	}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)
	return options
}

func applyDefaults(opts *ScanOptions) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
}
