package structural

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/parser/tspool"
	"github.com/specvital/ratchet/pkg/testpath"
)

// FindInlineFunctions reports function definitions nested inside another function
// body, at any depth and including those reached through a class defined in a
// function. Lambdas are not definitions and are ignored. Test files are exempt.
func FindInlineFunctions(ctx context.Context, root, self string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	result := &Result{}

	parseErrors, err := forEachPythonFile(ctx, root, self, o, func(f *file) {
		if testpath.IsTest(f.path) {
			return
		}
		collectNestedFunctions(f, f.root, false, 0, &result.Chunks)
	})
	result.ParseErrors = parseErrors
	if err != nil {
		return nil, err
	}
	return result, nil
}

func collectNestedFunctions(f *file, node *sitter.Node, inFunction bool, depth int, chunks *[]domain.Chunk) {
	if depth > tspool.MaxTreeDepth {
		return
	}

	if node.Type() == nodeFunctionDefinition {
		if inFunction {
			*chunks = append(*chunks, newChunk(f, node, headline(node, f.source)))
		}
		inFunction = true
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectNestedFunctions(f, node.Child(i), inFunction, depth+1, chunks)
	}
}
