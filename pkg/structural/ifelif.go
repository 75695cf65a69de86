package structural

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// FindIfElifWithoutElse reports every if statement that has at least one elif branch
// but no final else branch. The chunk points at the if line.
func FindIfElifWithoutElse(ctx context.Context, root, self string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	result := &Result{}

	parseErrors, err := forEachPythonFile(ctx, root, self, o, func(f *file) {
		walkTree(f.root, func(node *sitter.Node) bool {
			if node.Type() == nodeIfStatement && isOpenElifChain(node) {
				result.Chunks = append(result.Chunks, newChunk(f, node, headline(node, f.source)))
			}
			return true
		})
	})
	result.ParseErrors = parseErrors
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isOpenElifChain(ifNode *sitter.Node) bool {
	hasElif := false
	for i := 0; i < int(ifNode.ChildCount()); i++ {
		switch ifNode.Child(i).Type() {
		case nodeElifClause:
			hasElif = true
		case nodeElseClause:
			return false
		}
	}
	return hasElif
}
