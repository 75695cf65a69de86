package structural

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/ratchet/pkg/domain"
)

// classInfo is a class definition seen during the scan.
type classInfo struct {
	bases []string
	// initChunk is set when the class body defines __init__.
	initChunk *domain.Chunk
}

// FindInitMethodsInNonExceptionClasses reports __init__ methods defined on classes that
// are not exceptions. A class is an exception when one of its bases is named like one
// (ending in "Exception" or "Error") or, by name, inherits from such a class defined
// anywhere in the scanned tree.
func FindInitMethodsInNonExceptionClasses(ctx context.Context, root, self string, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	var classes []*classInfo
	byName := make(map[string][]*classInfo)

	parseErrors, err := forEachPythonFile(ctx, root, self, o, func(f *file) {
		walkTree(f.root, func(node *sitter.Node) bool {
			if node.Type() != nodeClassDefinition {
				return true
			}
			nameNode := node.ChildByFieldName("name")
			if nameNode == nil {
				return true
			}
			info := &classInfo{
				bases:     classBases(node, f.source),
				initChunk: findInitMethod(f, node),
			}
			classes = append(classes, info)
			name := getNodeText(nameNode, f.source)
			byName[name] = append(byName[name], info)
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	resolver := &exceptionResolver{byName: byName, memo: make(map[string]bool)}
	result := &Result{ParseErrors: parseErrors}
	for _, info := range classes {
		if info.initChunk == nil || resolver.anyException(info.bases) {
			continue
		}
		result.Chunks = append(result.Chunks, *info.initChunk)
	}
	return result, nil
}

// classBases returns the simple names of a class's bases. Keyword arguments such as
// metaclass= are skipped, attribute bases resolve to their last component and
// subscripted generics to the subscripted name.
func classBases(classNode *sitter.Node, source []byte) []string {
	args := classNode.ChildByFieldName("superclasses")
	if args == nil {
		args = findChildByType(classNode, nodeArgumentList)
	}
	if args == nil {
		return nil
	}

	var bases []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if name := baseName(args.NamedChild(i), source); name != "" {
			bases = append(bases, name)
		}
	}
	return bases
}

func baseName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case nodeIdentifier:
		return getNodeText(node, source)
	case nodeAttribute:
		if attr := node.ChildByFieldName("attribute"); attr != nil {
			return getNodeText(attr, source)
		}
		text := getNodeText(node, source)
		return text[strings.LastIndex(text, ".")+1:]
	case nodeSubscript:
		if value := node.ChildByFieldName("value"); value != nil {
			return baseName(value, source)
		}
		return ""
	default:
		return ""
	}
}

func findInitMethod(f *file, classNode *sitter.Node) *domain.Chunk {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		body = findChildByType(classNode, nodeBlock)
	}
	if body == nil {
		return nil
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		def := unwrapDecorated(body.NamedChild(i))
		if def.Type() != nodeFunctionDefinition {
			continue
		}
		name := def.ChildByFieldName("name")
		if name == nil || getNodeText(name, f.source) != "__init__" {
			continue
		}
		chunk := newChunk(f, def, headline(def, f.source))
		return &chunk
	}
	return nil
}

type exceptionResolver struct {
	byName map[string][]*classInfo
	// memo holds finished answers only.
	memo map[string]bool
}

func (r *exceptionResolver) anyException(bases []string) bool {
	for _, base := range bases {
		if r.isException(base) {
			return true
		}
	}
	return false
}

// isException resolves a base class name through every base reachable from it.
func (r *exceptionResolver) isException(name string) bool {
	if known, ok := r.memo[name]; ok {
		return known
	}

	seen := make(map[string]bool)
	if r.reaches(name, seen) {
		r.memo[name] = true
		return true
	}
	// The walk covered everything reachable from name, so none of it is an exception.
	for visited := range seen {
		r.memo[visited] = false
	}
	return false
}

// reaches walks the bases of name depth-first. A name already on the walk resolves to
// false there; the rest of the walk still covers its other bases.
func (r *exceptionResolver) reaches(name string, seen map[string]bool) bool {
	if isExceptionName(name) {
		return true
	}
	if known, ok := r.memo[name]; ok {
		return known
	}
	if seen[name] {
		return false
	}
	seen[name] = true

	for _, info := range r.byName[name] {
		for _, base := range info.bases {
			if r.reaches(base, seen) {
				return true
			}
		}
	}
	return false
}

func isExceptionName(name string) bool {
	return strings.HasSuffix(name, "Exception") || strings.HasSuffix(name, "Error")
}
