package headers

import (
	"path"
	"strings"

	"fdg/internal/errors"
)

// hasHeaderExt reports whether a trace line references a header file.
// Sources and toolchain artifacts (module maps, precompiled headers) are
// dropped from the tree.
func hasHeaderExt(name string) bool {
	return strings.HasSuffix(name, ".h") ||
		strings.HasSuffix(name, ".hpp") ||
		strings.HasSuffix(name, ".hxx")
}

// traceEntry is one filtered line of the compiler's include trace.
type traceEntry struct {
	depth int
	name  string
}

// ParseTrace converts the diagnostic stream of one `-H` compiler invocation
// into an inclusion tree rooted at rootName. Each trace line is encoded as
// `<depth-marks><space><path>`: the offset of the first space is the nesting
// depth. Lines under an ignored toolchain root and lines that do not name a
// header file are skipped. A line with no separating space is a malformed
// trace and fails parsing for this header only.
func ParseTrace(output, rootName string, ignorePrefixes []string) (*Node, error) {
	var entries []traceEntry
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		sep := strings.IndexByte(line, ' ')
		if sep <= 0 {
			return nil, errors.New(errors.TraceMalformed,
				"expected a space in trace line: "+line, nil)
		}
		name := strings.TrimSpace(line[sep:])
		if ignored(name, ignorePrefixes) {
			continue
		}
		if !hasHeaderExt(name) {
			continue
		}
		entries = append(entries, traceEntry{depth: sep, name: path.Clean(name)})
	}

	// Attach each entry under the nearest preceding entry of smaller depth,
	// with the queried header itself at depth zero. An empty entry list
	// yields a root-only tree, which is valid: the header includes nothing
	// of interest.
	root := &Node{Name: path.Clean(rootName)}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{node: root, depth: 0}}
	for _, e := range entries {
		node := &Node{Name: e.name}
		for stack[len(stack)-1].depth >= e.depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, frame{node: node, depth: e.depth})
	}
	return root, nil
}

// ignored reports whether the referenced path lies under a toolchain root
// that is excluded from analysis entirely.
func ignored(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
