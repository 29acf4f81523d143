// Package headers resolves the include surface of a built C/C++ library.
//
// Header files of a library typically depend on each other. In libpng, for
// example, pnglibconf.h records the build-time configuration and png.h relies
// on it. Such config-like headers must be pulled in through other headers and
// never included directly, otherwise the declarations parsed from them can be
// inconsistent with the built binary. This package traces every header with
// the compiler, merges the per-header inclusion trees into one graph, and
// determines the top-level headers a consumer should include directly along
// with the system headers those top-level headers expose.
package headers

import (
	"sort"
	"strings"
)

// Node is one header reference discovered in a compiler trace. Name is either
// a path relative to the library's header root or an absolute system path.
// Children are the files this header includes directly, in the order the
// compiler reported them.
type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// IsSystem reports whether the node references a header outside the library's
// header root. After normalization, only system headers keep absolute paths.
func (n *Node) IsSystem() bool {
	return strings.HasPrefix(n.Name, "/")
}

// Walk visits the subtree in preorder, parents before children, siblings in
// report order. Traversal is iterative so pathologically deep inclusion
// chains cannot exhaust the stack.
func (n *Node) Walk(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(node)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// Rebase rewrites every node name that is prefixed by the header root into a
// path relative to that root. Names outside the root are left absolute and
// thereby marked as system headers. Rebase must run exactly once per tree,
// before any graph construction, because the graph merges trees by exact name
// equality.
func (n *Node) Rebase(headerRoot string) {
	prefix := strings.TrimSuffix(headerRoot, "/") + "/"
	n.Walk(func(node *Node) {
		if strings.HasPrefix(node.Name, prefix) {
			node.Name = node.Name[len(prefix):]
		}
	})
}

// names collects the distinct node names of every tree in the forest.
func names(forest []*Node) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tree := range forest {
		tree.Walk(func(node *Node) {
			set[node.Name] = struct{}{}
		})
	}
	return set
}

// sortedKeys returns the keys of a string set in lexicographic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
