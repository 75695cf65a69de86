package structural

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/testpath"
)

// FindUnderscoreImports reports imports of private names outside test files.
//
// Each private name in a from-import yields its own chunk; aliases are resolved to the
// imported name. A plain import is reported when any component of the module path is
// private. Dunder names such as __future__ or __version__ are public.
func FindUnderscoreImports(ctx context.Context, root, self string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	result := &Result{}

	parseErrors, err := forEachPythonFile(ctx, root, self, o, func(f *file) {
		if testpath.IsTest(f.path) {
			return
		}
		walkTree(f.root, func(node *sitter.Node) bool {
			switch node.Type() {
			case nodeImportFromStatement:
				result.Chunks = append(result.Chunks, privateFromImports(f, node)...)
				return false
			case nodeImportStatement:
				result.Chunks = append(result.Chunks, privatePlainImports(f, node)...)
				return false
			default:
				return true
			}
		})
	})
	result.ParseErrors = parseErrors
	if err != nil {
		return nil, err
	}
	return result, nil
}

func privateFromImports(f *file, stmt *sitter.Node) []domain.Chunk {
	moduleNode := stmt.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	module := getNodeText(moduleNode, f.source)

	var chunks []domain.Chunk
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		name := importedName(child, f.source)
		if name == "" || !isPrivateName(name) {
			continue
		}
		text := "from " + module + " import " + getNodeText(child, f.source)
		chunks = append(chunks, newChunk(f, child, text))
	}
	return chunks
}

func privatePlainImports(f *file, stmt *sitter.Node) []domain.Chunk {
	var chunks []domain.Chunk
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		path := importedName(child, f.source)
		if path == "" {
			continue
		}
		for _, component := range strings.Split(path, ".") {
			if isPrivateName(component) {
				chunks = append(chunks, newChunk(f, child, "import "+getNodeText(child, f.source)))
				break
			}
		}
	}
	return chunks
}

// importedName returns the dotted name an import clause refers to, ignoring any alias.
// It returns "" for nodes that are not import clauses.
func importedName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case nodeDottedName:
		return getNodeText(node, source)
	case nodeAliasedImport:
		if name := node.ChildByFieldName("name"); name != nil {
			return getNodeText(name, source)
		}
		if name := findChildByType(node, nodeDottedName); name != nil {
			return getNodeText(name, source)
		}
		return ""
	default:
		return ""
	}
}

func isPrivateName(name string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}
	return !(len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"))
}
