package headers

import (
	"reflect"
	"testing"
)

// forestOf builds rebased trees directly, bypassing the parser.
func forestOf(trees ...*Node) []*Node { return trees }

func TestRootsSimpleChain(t *testing.T) {
	// a.h includes only a system header; b.h includes a.h.
	aTree := &Node{Name: "a.h", Children: []*Node{
		{Name: "/usr/include/stddef.h"},
	}}
	bTree := &Node{Name: "b.h", Children: []*Node{
		{Name: "a.h", Children: []*Node{
			{Name: "/usr/include/stddef.h"},
		}},
	}}

	g := BuildGraph(forestOf(aTree, bTree))

	if got := g.InDegree("a.h"); got != 1 {
		t.Errorf("in-degree of a.h = %d, want 1", got)
	}
	if got := g.InDegree("b.h"); got != 0 {
		t.Errorf("in-degree of b.h = %d, want 0", got)
	}
	if got := g.InDegree("/usr/include/stddef.h"); got != 2 {
		t.Errorf("in-degree of stddef.h = %d, want 2", got)
	}

	roots := g.Roots()
	if !reflect.DeepEqual(roots, []string{"b.h"}) {
		t.Errorf("roots = %v, want [b.h]", roots)
	}
}

func TestRootsPureCycle(t *testing.T) {
	// x.h and y.h include each other; the lexicographically smallest
	// member represents the cycle.
	xTree := &Node{Name: "x.h", Children: []*Node{{Name: "y.h"}}}
	yTree := &Node{Name: "y.h", Children: []*Node{{Name: "x.h"}}}

	roots := BuildGraph(forestOf(xTree, yTree)).Roots()
	if !reflect.DeepEqual(roots, []string{"x.h"}) {
		t.Errorf("roots = %v, want [x.h]", roots)
	}
}

func TestRootsCyclePlusIndependent(t *testing.T) {
	forest := forestOf(
		&Node{Name: "m.h", Children: []*Node{{Name: "n.h"}}},
		&Node{Name: "n.h", Children: []*Node{{Name: "m.h"}}},
		&Node{Name: "solo.h"},
	)

	roots := BuildGraph(forest).Roots()
	// solo.h has in-degree zero; m.h represents the m/n cycle.
	if !reflect.DeepEqual(roots, []string{"solo.h", "m.h"}) {
		t.Errorf("roots = %v, want [solo.h, m.h]", roots)
	}
}

func TestRootsTwoDisjointCycles(t *testing.T) {
	forest := forestOf(
		&Node{Name: "c.h", Children: []*Node{{Name: "d.h"}}},
		&Node{Name: "d.h", Children: []*Node{{Name: "c.h"}}},
		&Node{Name: "p.h", Children: []*Node{{Name: "q.h"}}},
		&Node{Name: "q.h", Children: []*Node{{Name: "p.h"}}},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"c.h", "p.h"}) {
		t.Errorf("roots = %v, want [c.h, p.h]", roots)
	}
}

func TestRootsMultipleIndependentSorted(t *testing.T) {
	forest := forestOf(
		&Node{Name: "zeta.h"},
		&Node{Name: "alpha.h"},
		&Node{Name: "mid.h"},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"alpha.h", "mid.h", "zeta.h"}) {
		t.Errorf("roots = %v, want lexicographic order", roots)
	}
}

func TestRootsTransitiveInclusionCountsRoot(t *testing.T) {
	// umbrella.h pulls in inner.h through wrap.h. The edge recorded for
	// inner.h names the traced root, so inner.h is included by both
	// umbrella.h (transitively) and wrap.h (directly, in wrap's own trace).
	forest := forestOf(
		&Node{Name: "umbrella.h", Children: []*Node{
			{Name: "wrap.h", Children: []*Node{{Name: "inner.h"}}},
		}},
		&Node{Name: "wrap.h", Children: []*Node{{Name: "inner.h"}}},
		&Node{Name: "inner.h"},
	)

	g := BuildGraph(forest)
	if got := g.InDegree("inner.h"); got != 2 {
		t.Errorf("in-degree of inner.h = %d, want 2 (umbrella and wrap)", got)
	}
	if got := g.InDegree("wrap.h"); got != 1 {
		t.Errorf("in-degree of wrap.h = %d, want 1", got)
	}

	roots := g.Roots()
	if !reflect.DeepEqual(roots, []string{"umbrella.h"}) {
		t.Errorf("roots = %v, want [umbrella.h]", roots)
	}
}

func TestRootsCycleReachableFromRootSuppressed(t *testing.T) {
	// z.h pulls in the x/y cycle, so the cycle is already exposed through
	// z.h and gets no representative of its own.
	forest := forestOf(
		&Node{Name: "z.h", Children: []*Node{
			{Name: "x.h", Children: []*Node{{Name: "y.h"}}},
		}},
		&Node{Name: "x.h", Children: []*Node{{Name: "y.h"}}},
		&Node{Name: "y.h", Children: []*Node{{Name: "x.h"}}},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"z.h"}) {
		t.Errorf("roots = %v, want [z.h]", roots)
	}
}

func TestRootsChainOffCycle(t *testing.T) {
	// w.h hangs off the x/y cycle; the cycle representative reaches it, so
	// only x.h is advertised.
	forest := forestOf(
		&Node{Name: "x.h", Children: []*Node{{Name: "y.h"}}},
		&Node{Name: "y.h", Children: []*Node{{Name: "x.h"}, {Name: "w.h"}}},
		&Node{Name: "w.h"},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"x.h"}) {
		t.Errorf("roots = %v, want [x.h]", roots)
	}
}

func TestRootsSelfInclusion(t *testing.T) {
	// A header including itself is a cycle of one and must still be
	// exposed.
	forest := forestOf(
		&Node{Name: "a.h", Children: []*Node{{Name: "a.h"}}},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"a.h"}) {
		t.Errorf("roots = %v, want [a.h]", roots)
	}
}

func TestRootsSelfInclusionUnderRootSuppressed(t *testing.T) {
	// The self-loop is already reachable through b.h, so only b.h is
	// emitted.
	forest := forestOf(
		&Node{Name: "a.h", Children: []*Node{{Name: "a.h"}}},
		&Node{Name: "b.h", Children: []*Node{
			{Name: "a.h", Children: []*Node{{Name: "a.h"}}},
		}},
	)

	roots := BuildGraph(forest).Roots()
	if !reflect.DeepEqual(roots, []string{"b.h"}) {
		t.Errorf("roots = %v, want [b.h]", roots)
	}
}

func TestRootsEmptyForest(t *testing.T) {
	roots := BuildGraph(nil).Roots()
	if len(roots) != 0 {
		t.Errorf("empty graph should yield no roots, got %v", roots)
	}
}

func TestRootsDeterministic(t *testing.T) {
	forest := forestOf(
		&Node{Name: "b.h", Children: []*Node{{Name: "a.h"}}},
		&Node{Name: "a.h", Children: []*Node{{Name: "/usr/include/stdint.h"}}},
		&Node{Name: "x.h", Children: []*Node{{Name: "y.h"}}},
		&Node{Name: "y.h", Children: []*Node{{Name: "x.h"}}},
	)

	first := BuildGraph(forest).Roots()
	for i := 0; i < 50; i++ {
		if got := BuildGraph(forest).Roots(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: roots = %v, want %v", i, got, first)
		}
	}
}
