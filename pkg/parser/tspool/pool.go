// Package tspool provides tree-sitter parsers for the languages syntax-aware rules inspect.
//
// Parsers are created fresh for every parse. A parser whose ParseCtx was cancelled keeps
// its internal cancel flag set, so reusing it makes later parses fail with
// "operation limit was hit".
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/specvital/ratchet/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking AST trees.
const MaxTreeDepth = 1000

var (
	goLang *sitter.Language
	jsLang *sitter.Language
	pyLang *sitter.Language
	rsLang *sitter.Language
	tsLang *sitter.Language

	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		goLang = golang.GetLanguage()
		jsLang = javascript.GetLanguage()
		pyLang = python.GetLanguage()
		rsLang = rust.GetLanguage()
		tsLang = typescript.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter language for the given domain language.
func GetLanguage(lang domain.Language) *sitter.Language {
	initLanguages()
	switch lang {
	case domain.LanguageGo:
		return goLang
	case domain.LanguageJavaScript:
		return jsLang
	case domain.LanguagePython:
		return pyLang
	case domain.LanguageRust:
		return rsLang
	default:
		return tsLang
	}
}

// Get returns a parser for the given language.
// The returned parser is NOT safe for concurrent use.
// Caller MUST call parser.Close() when done to free resources.
func Get(lang domain.Language) *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(GetLanguage(lang))
	return parser
}

// Parse parses source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	parser := Get(lang)
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}

	return tree, nil
}

// FirstError returns the first ERROR or MISSING node in the tree, or nil when the
// source parsed cleanly.
func FirstError(root *sitter.Node) *sitter.Node {
	if !root.HasError() {
		return nil
	}
	return firstErrorWithDepth(root, 0)
}

func firstErrorWithDepth(node *sitter.Node, depth int) *sitter.Node {
	if depth > MaxTreeDepth {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorWithDepth(child, depth+1); found != nil {
			return found
		}
	}
	return nil
}
