package structural

import (
	"context"
	"fmt"
	"slices"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/parser/tspool"
)

// ViolationCapture is the capture name that marks the reported node of a query.
// Queries without it report their first capture.
const ViolationCapture = "violation"

// QueryError reports a tree-sitter query that does not compile.
type QueryError struct {
	Language domain.Language
	Query    string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s query %q: %v", e.Language, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// QueryRule reports every node a tree-sitter query captures in files of one language.
type QueryRule struct {
	lang    domain.Language
	query   string
	capture string
}

// NewQueryRule compiles query for lang. A query that fails to compile or declares no
// capture at all yields a *QueryError.
func NewQueryRule(lang domain.Language, query string) (*QueryRule, error) {
	if !slices.Contains(domain.Languages, lang) {
		return nil, &QueryError{Language: lang, Query: query, Err: fmt.Errorf("unsupported language")}
	}

	names, err := tspool.CaptureNames(lang, query)
	if err != nil {
		return nil, &QueryError{Language: lang, Query: query, Err: err}
	}
	if len(names) == 0 {
		return nil, &QueryError{Language: lang, Query: query, Err: fmt.Errorf("query has no captures")}
	}

	rule := &QueryRule{lang: lang, query: query}
	if slices.Contains(names, ViolationCapture) {
		rule.capture = ViolationCapture
	}
	return rule, nil
}

// Language returns the language the query is compiled for.
func (r *QueryRule) Language() domain.Language {
	return r.lang
}

// Query returns the query source.
func (r *QueryRule) Query() string {
	return r.query
}

// Find runs the query over every file of the rule's language under root.
func (r *QueryRule) Find(ctx context.Context, root, self string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	result := &Result{}

	var queryErr error
	parseErrors, err := forEachFile(ctx, root, self, r.lang, r.lang.Extension(), o, func(f *file) {
		if queryErr != nil {
			return
		}
		matches, err := tspool.QueryWithCache(f.root, f.source, r.lang, r.query)
		if err != nil {
			queryErr = &QueryError{Language: r.lang, Query: r.query, Err: err}
			return
		}

		seen := make(map[[2]uint32]bool)
		for _, m := range matches {
			node := m.Node
			if r.capture != "" {
				captured, ok := m.Captures[r.capture]
				if !ok {
					continue
				}
				node = captured
			}
			key := [2]uint32{node.StartByte(), node.EndByte()}
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Chunks = append(result.Chunks, newChunk(f, node, headline(node, f.source)))
		}
	})
	result.ParseErrors = parseErrors
	if err != nil {
		return nil, err
	}
	if queryErr != nil {
		return nil, queryErr
	}
	return result, nil
}
