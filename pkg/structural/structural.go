// Package structural detects Python patterns that need syntax awareness rather than a regex:
// if/elif chains without else, nested function definitions, imports of private names,
// and initializers on classes that are not exceptions.
//
// Every evaluator walks the same tree as the regex rules, parses each file with
// tree-sitter and reports domain.Chunk values, so the ratchet treats both kinds alike.
// Files that fail to parse are skipped and reported as ParseError values; they never
// fail a check on their own.
package structural

import (
	"context"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/parser/tspool"
	"github.com/specvital/ratchet/pkg/scan"
)

// ParseError records a file skipped because it does not parse.
type ParseError struct {
	// Path is relative to the scan root.
	Path string
	// Line is the 1-based line of the first syntax error, or 0 when unknown.
	Line int
	// Err is set when the parser itself failed.
	Err error
}

func (e ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s:%d: syntax error", e.Path, e.Line)
}

// Result holds the chunks an evaluator found and the files it had to skip.
type Result struct {
	Chunks      []domain.Chunk
	ParseErrors []ParseError
}

// Evaluator is the shared signature of the structural checks.
type Evaluator func(ctx context.Context, root, self string, opts ...Option) (*Result, error)

type options struct {
	scanOptions []scan.ScanOption
	logger      *slog.Logger
}

// Option configures an evaluator.
type Option func(*options)

// WithScanOptions forwards options to the file scanner.
func WithScanOptions(opts ...scan.ScanOption) Option {
	return func(o *options) {
		o.scanOptions = append(o.scanOptions, opts...)
	}
}

// WithLogger sets the logger that receives skipped-file warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// file is one successfully parsed source file.
type file struct {
	path   string
	source []byte
	root   *sitter.Node
}

// forEachFile parses every file with ext under root, skipping self, and calls visit for
// each file that parses cleanly. Files are visited in scan order.
func forEachFile(ctx context.Context, root, self string, lang domain.Language, ext domain.FileExtension, o *options, visit func(*file)) ([]ParseError, error) {
	scanner, err := scan.New(root, ext, append(o.scanOptions, scan.WithSelf(self), scan.WithLogger(o.logger))...)
	if err != nil {
		return nil, err
	}
	src := scanner.Source()

	var parseErrors []ParseError
	for path, err := range scanner.All(ctx) {
		if err != nil {
			return parseErrors, err
		}

		content, err := src.ReadFile(ctx, path)
		if err != nil {
			return parseErrors, err
		}

		tree, err := tspool.Parse(ctx, lang, content)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return parseErrors, ctxErr
			}
			parseErrors = append(parseErrors, ParseError{Path: path, Err: err})
			o.logger.Warn("skipping unparsable file", "path", path, "error", err)
			continue
		}

		rootNode := tree.RootNode()
		if errNode := tspool.FirstError(rootNode); errNode != nil {
			parseErr := ParseError{Path: path, Line: nodeLine(errNode)}
			parseErrors = append(parseErrors, parseErr)
			o.logger.Warn("skipping file with syntax error", "path", path, "line", parseErr.Line)
			tree.Close()
			continue
		}

		visit(&file{path: path, source: content, root: rootNode})
		tree.Close()
	}

	return parseErrors, nil
}

func forEachPythonFile(ctx context.Context, root, self string, o *options, visit func(*file)) ([]ParseError, error) {
	return forEachFile(ctx, root, self, domain.LanguagePython, domain.LanguagePython.Extension(), o, visit)
}

func newChunk(f *file, node *sitter.Node, text string) domain.Chunk {
	return domain.Chunk{
		File: f.path,
		Line: nodeLine(node),
		Text: text,
	}
}
