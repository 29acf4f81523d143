package headers

import "strings"

// includeSegment is the path segment that separates a toolchain-specific
// install prefix from the stable identity of a system header.
const includeSegment = "/include/"

// SystemHeaders collects the system headers exposed through the given root
// headers. Only roots count: a system header reachable solely through a
// non-root tree is not part of the advertised include surface. Within each
// root's tree, a system header is recorded when a project header includes it
// directly. Raw absolute paths are canonicalized to the suffix after their
// last "/include/" segment, so differing toolchain install locations map to
// the same identity (e.g. stddef.h); paths without that segment are dropped.
// The result is deduplicated in first-seen order across roots.
func SystemHeaders(forest []*Node, roots []string) []string {
	rootSet := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		rootSet[r] = struct{}{}
	}

	seen := make(map[string]struct{})
	var result []string
	for _, tree := range forest {
		if _, ok := rootSet[tree.Name]; !ok {
			continue
		}
		for _, raw := range treeSystemHeaders(tree) {
			idx := strings.LastIndex(raw, includeSegment)
			if idx < 0 {
				continue
			}
			name := raw[idx+len(includeSegment):]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}

// treeSystemHeaders returns the absolute paths of system headers included
// directly by project headers within one tree, in preorder.
func treeSystemHeaders(tree *Node) []string {
	var sys []string
	tree.Walk(func(node *Node) {
		if node.IsSystem() {
			return
		}
		for _, child := range node.Children {
			if child.IsSystem() {
				sys = append(sys, child.Name)
			}
		}
	})
	return sys
}
