package structural

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/ratchet/pkg/parser/tspool"
	"github.com/specvital/ratchet/pkg/textutil"
)

// Python AST node types.
const (
	nodeAliasedImport       = "aliased_import"
	nodeArgumentList        = "argument_list"
	nodeAttribute           = "attribute"
	nodeBlock               = "block"
	nodeClassDefinition     = "class_definition"
	nodeDecoratedDefinition = "decorated_definition"
	nodeDottedName          = "dotted_name"
	nodeElifClause          = "elif_clause"
	nodeElseClause          = "else_clause"
	nodeFunctionDefinition  = "function_definition"
	nodeIdentifier          = "identifier"
	nodeIfStatement         = "if_statement"
	nodeImportFromStatement = "import_from_statement"
	nodeImportStatement     = "import_statement"
	nodeKeywordArgument     = "keyword_argument"
	nodeSubscript           = "subscript"
)

// getNodeText returns the source text for the given AST node.
// Returns empty string if the node's byte range exceeds the source length.
func getNodeText(node *sitter.Node, source []byte) (result string) {
	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	if start > sourceLen || end > sourceLen {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// nodeLine returns the 1-based line on which node starts.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// headline returns the first source line of node, used as a chunk excerpt.
func headline(node *sitter.Node, source []byte) string {
	return textutil.FirstLine(getNodeText(node, source))
}

// findChildByType returns the first direct child with the given node type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType returns all direct children with the given node type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var children []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			children = append(children, child)
		}
	}
	return children
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if depth > tspool.MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), visitor, depth+1)
	}
}

// walkTree recursively visits all nodes in the AST in source order.
// The visitor function returns false to stop traversing into children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}

// unwrapDecorated returns the function or class inside a decorated_definition,
// or node itself for any other node.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node.Type() != nodeDecoratedDefinition {
		return node
	}
	if definition := node.ChildByFieldName("definition"); definition != nil {
		return definition
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeFunctionDefinition || child.Type() == nodeClassDefinition {
			return child
		}
	}
	return node
}
