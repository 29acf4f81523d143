package gadget

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"fdg/internal/project"
)

// Kind classifies an extracted gadget.
type Kind string

const (
	// KindFunction is an exported function prototype or inline definition
	KindFunction Kind = "function"
	// KindMacro is an object-like or function-like macro with a body
	KindMacro Kind = "macro"
	// KindType is a typedef, struct, enum or union declaration
	KindType Kind = "type"
)

// Gadget is one usable element of the library's public API.
type Gadget struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Signature string `json:"signature"`
	// Header is the project-relative header the gadget was found in
	Header string `json:"header"`
	// Line is the 1-indexed source line
	Line int `json:"line"`
}

// Extractor extracts gadgets from header files.
type Extractor struct {
	parser *Parser
}

// NewExtractor creates a gadget extractor.
func NewExtractor() *Extractor {
	return &Extractor{parser: NewParser()}
}

// ExtractProject extracts gadgets from the given top-level headers of a
// library, dropping anything the per-library configuration bans. Header paths
// are relative to the project's header root.
func (e *Extractor) ExtractProject(ctx context.Context, proj *project.Project, headers []string) ([]Gadget, error) {
	var gadgets []Gadget
	seen := make(map[string]bool)

	for _, header := range headers {
		source, err := os.ReadFile(filepath.Join(proj.HeaderDir(), header))
		if err != nil {
			return nil, err
		}
		extracted, err := e.ExtractSource(ctx, header, source)
		if err != nil {
			return nil, err
		}
		for _, g := range extracted {
			if proj.LibConfig().IsBanned(g.Name) {
				continue
			}
			if seen[g.Name] {
				continue
			}
			seen[g.Name] = true
			gadgets = append(gadgets, g)
		}
	}
	return gadgets, nil
}

// ExtractSource extracts gadgets from one header's source bytes.
func (e *Extractor) ExtractSource(ctx context.Context, header string, source []byte) ([]Gadget, error) {
	root, err := e.parser.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	var gadgets []Gadget

	for _, node := range findNodes(root, []string{"declaration", "function_definition"}) {
		if g := e.extractFunction(node, source, header); g != nil {
			gadgets = append(gadgets, *g)
		}
	}
	for _, node := range findNodes(root, []string{"preproc_def", "preproc_function_def"}) {
		if g := e.extractMacro(node, source, header); g != nil {
			gadgets = append(gadgets, *g)
		}
	}
	for _, node := range findNodes(root, []string{"type_definition"}) {
		if g := e.extractTypedef(node, source, header); g != nil {
			gadgets = append(gadgets, *g)
		}
	}

	return gadgets, nil
}

// extractFunction extracts a function gadget from a declaration or an inline
// definition. Declarations without a function declarator are variables and
// are skipped.
func (e *Extractor) extractFunction(node *sitter.Node, source []byte, header string) *Gadget {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil || findFunctionDeclarator(declarator) == nil {
		return nil
	}

	name := declaratorName(declarator, source)
	if name == "" {
		return nil
	}

	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	signature := collapse(typeNode.Content(source) + " " + declarator.Content(source))

	return &Gadget{
		Name:      name,
		Kind:      KindFunction,
		Signature: signature,
		Header:    header,
		Line:      int(node.StartPoint().Row) + 1,
	}
}

// extractMacro extracts a macro gadget. Object-like macros without a body,
// typically include guards, are skipped.
func (e *Extractor) extractMacro(node *sitter.Node, source []byte, header string) *Gadget {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	if node.Type() == "preproc_def" && findChildByType(node, "preproc_arg") == nil {
		return nil
	}

	signature := "#define " + name
	if params := findChildByType(node, "preproc_params"); params != nil {
		signature += params.Content(source)
	}

	return &Gadget{
		Name:      name,
		Kind:      KindMacro,
		Signature: signature,
		Header:    header,
		Line:      int(node.StartPoint().Row) + 1,
	}
}

func (e *Extractor) extractTypedef(node *sitter.Node, source []byte, header string) *Gadget {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return nil
	}
	name := declaratorName(declarator, source)
	if name == "" {
		return nil
	}

	return &Gadget{
		Name:      name,
		Kind:      KindType,
		Signature: collapse(node.Content(source)),
		Header:    header,
		Line:      int(node.StartPoint().Row) + 1,
	}
}

// findFunctionDeclarator descends into a declarator looking for the
// function_declarator node, through pointer and reference wrappers.
func findFunctionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "function_declarator":
			return node
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

// declaratorName descends a declarator chain to the declared identifier.
func declaratorName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "type_identifier":
			return node.Content(source)
		}
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			node = inner
			continue
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "identifier", "field_identifier", "type_identifier":
				return child.Content(source)
			}
		}
		return ""
	}
	return ""
}

// collapse normalizes a signature to a single line.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatAPIs renders function and macro gadgets one per line, the form prompts
// embed directly.
func FormatAPIs(gadgets []Gadget) string {
	var b strings.Builder
	for _, g := range gadgets {
		if g.Kind == KindType {
			continue
		}
		b.WriteString(g.Signature)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTypes renders type gadgets one per line.
func FormatTypes(gadgets []Gadget) string {
	var b strings.Builder
	for _, g := range gadgets {
		if g.Kind != KindType {
			continue
		}
		b.WriteString(g.Signature)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
