package headers

// Graph is the merged inclusion view over a forest of traced headers. For
// every header name it records which traced root headers pull it in; a header
// with no includers is top-level.
type Graph struct {
	includers map[string]map[string]struct{}
}

// BuildGraph merges a forest of rebased inclusion trees into one graph.
// Every name appearing anywhere in the forest becomes a vertex, so vertices
// that nothing includes carry an explicit empty edge set. For each tree, each
// parent→child step records the tree's root as an includer of the child: the
// root is what causes the child to be picked up transitively.
func BuildGraph(forest []*Node) *Graph {
	g := &Graph{includers: make(map[string]map[string]struct{})}

	for name := range names(forest) {
		g.includers[name] = make(map[string]struct{})
	}

	for _, tree := range forest {
		rootName := tree.Name
		tree.Walk(func(node *Node) {
			for _, child := range node.Children {
				if set, ok := g.includers[child.Name]; ok {
					set[rootName] = struct{}{}
				}
			}
		})
	}

	return g
}

// InDegree returns the number of distinct traced roots that include name.
func (g *Graph) InDegree(name string) int {
	return len(g.includers[name])
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	return len(g.includers)
}

// Roots returns the top-level headers: every vertex no other traced header
// includes, plus one representative per unreachable cycle. Mutually-including
// headers are legitimate in real libraries; a strict topological sort would
// drop all of them, so each cycle that no root already exposes is collapsed
// to its lexicographically smallest member. The result ordering is canonical:
// in-degree-zero vertices in lexicographic order, then cycle representatives
// in discovery order. Roots never fails; an empty graph yields no roots.
func (g *Graph) Roots() []string {
	inDegree := make(map[string]int, len(g.includers))
	for name, set := range g.includers {
		inDegree[name] = len(set)
	}

	var queue []string
	for _, name := range sortedKeys(g.includers) {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	visited := make(map[string]struct{}, len(g.includers))
	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := visited[name]; ok {
			// The queue may hold duplicates when several pops release
			// the same vertex.
			continue
		}
		visited[name] = struct{}{}
		result = append(result, name)

		for _, other := range sortedKeys(g.includers[name]) {
			inDegree[other]--
			if inDegree[other] == 0 {
				if _, ok := visited[other]; !ok {
					queue = append(queue, other)
				}
			}
		}
	}

	// Vertices still unvisited are included by something, directly or
	// through a cycle. A cycle none of the emitted roots can reach would
	// otherwise be lost entirely, so each one is collapsed to a single
	// deterministic representative.
	return append(result, g.cycleRepresentatives(visited)...)
}

// cycleRepresentatives finds, among the vertices Kahn never released, the
// maximal mutually-including groups that no header outside the group pulls
// in, and returns the lexicographically smallest member of each. Groups with
// an outside includer are skipped: they are already exposed through that
// includer's root.
func (g *Graph) cycleRepresentatives(visited map[string]struct{}) []string {
	includes := g.reverse()

	done := make(map[string]struct{})
	var reps []string
	for _, name := range sortedKeys(g.includers) {
		if _, ok := visited[name]; ok {
			continue
		}
		if _, ok := done[name]; ok {
			continue
		}

		// The strongly connected component of name is the overlap of
		// what reaches it and what it reaches, following includer edges
		// one way and include edges the other.
		fwd := g.closure(name, g.includers, visited)
		back := g.closure(name, includes, visited)
		component := make(map[string]struct{})
		for member := range fwd {
			if _, ok := back[member]; ok {
				component[member] = struct{}{}
			}
		}

		members := sortedKeys(component)
		for _, member := range members {
			done[member] = struct{}{}
		}

		if len(members) < 2 {
			// A lone leftover is a cycle only when it includes itself;
			// otherwise it is a header some root already includes.
			if _, self := g.includers[members[0]][members[0]]; !self {
				continue
			}
		}
		if g.hasOutsideIncluder(component) {
			continue
		}
		reps = append(reps, members[0])
	}
	return reps
}

// closure walks edges from start, collecting every reachable vertex that
// Kahn has not already emitted. The walk is iterative.
func (g *Graph) closure(start string, edges map[string]map[string]struct{}, visited map[string]struct{}) map[string]struct{} {
	seen := map[string]struct{}{start: {}}
	stack := []string{start}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for other := range edges[name] {
			if _, ok := visited[other]; ok {
				continue
			}
			if _, ok := seen[other]; ok {
				continue
			}
			seen[other] = struct{}{}
			stack = append(stack, other)
		}
	}
	return seen
}

// reverse derives the include relation from the includer relation.
func (g *Graph) reverse() map[string]map[string]struct{} {
	includes := make(map[string]map[string]struct{}, len(g.includers))
	for name := range g.includers {
		includes[name] = make(map[string]struct{})
	}
	for name, set := range g.includers {
		for includer := range set {
			includes[includer][name] = struct{}{}
		}
	}
	return includes
}

// hasOutsideIncluder reports whether any member of the component is included
// by a header outside it.
func (g *Graph) hasOutsideIncluder(component map[string]struct{}) bool {
	for member := range component {
		for includer := range g.includers[member] {
			if _, ok := component[includer]; !ok {
				return true
			}
		}
	}
	return false
}
