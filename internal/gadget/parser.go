// Package gadget extracts the public API surface of a library from its
// top-level headers: exported function signatures, object-like and
// function-like macros, and custom type declarations. The extracted gadgets
// are what a generated driver is allowed to call.
package gadget

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Parser wraps tree-sitter with the C++ grammar, which is a superset of the
// C headers fuzz targets ship.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a header parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses header source and returns the AST root node.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

// findNodes collects all nodes of the given types, in document order.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	var found []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if want[n.Type()] {
			found = append(found, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return found
}

// findChildByType returns the first direct child of the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}
