package tree

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/phylonet/pkg/errors"
)

func TestReroot(t *testing.T) {
	// ((A:1,B:1)X:2,C:3);
	tr := build(t, clade("", na,
		clade("X", 2, leaf("A", 1), leaf("B", 1)),
		leaf("C", 3),
	))
	before := tr.Length()

	if err := tr.Reroot(mustFind(t, tr, "A").ID); err != nil {
		t.Fatalf("Reroot() error: %v", err)
	}

	// (A:0.5,(B:1,C:5)X:0.5);
	if got := labels(tr.Nodes()); !slices.Equal(got, []string{"", "A", "X", "B", "C"}) {
		t.Errorf("preorder = %v", got)
	}
	for i, n := range tr.Nodes() {
		if n.ID != i {
			t.Errorf("node %q has ID %d after reroot, want %d", n.Label, n.ID, i)
		}
	}
	wantBL := map[string]float64{"A": 0.5, "X": 0.5, "B": 1, "C": 5}
	wantHeight := map[string]float64{"": 5.5, "A": 5, "X": 5, "B": 4, "C": 0}
	for _, n := range tr.Nodes() {
		if !n.IsRoot() && n.BranchLength != wantBL[n.Label] {
			t.Errorf("branch length(%q) = %v, want %v", n.Label, n.BranchLength, wantBL[n.Label])
		}
		if n.Height != wantHeight[n.Label] {
			t.Errorf("height(%q) = %v, want %v", n.Label, n.Height, wantHeight[n.Label])
		}
	}
	if after := tr.Length(); !near(before, after) {
		t.Errorf("Length() = %v after reroot, want %v", after, before)
	}
}

func TestRerootErrors(t *testing.T) {
	tr := build(t, clade("", na,
		hyb(clade("S", 1, leaf("A", 1)), "H1"),
		clade("P", 1, leaf("C", 1), hyb(leaf("D", 1), "H1")),
	))

	tests := []struct {
		name string
		id   int
		code errors.Code
	}{
		{"root", tr.Root().ID, errors.ErrCodeInvalidOperation},
		{"reticulate edge", mustFind(t, tr, "D").ID, errors.ErrCodeInvalidOperation},
		{"missing node", 99, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tr.Reroot(tt.id); !errors.Is(err, tt.code) {
				t.Errorf("Reroot(%d) error = %v, want %s", tt.id, err, tt.code)
			}
		})
	}
}

func TestRerootRetainsReticulation(t *testing.T) {
	// ((A:1,(B:1)#H1:1):1,(C:1,#H1:1):1);
	tr := build(t, clade("", na,
		clade("X", 1, leaf("A", 1), hyb(clade("S", 1, leaf("B", 1)), "H1")),
		clade("Y", 1, leaf("C", 1), hyb(leaf("D", 1), "H1")),
	))

	if err := tr.Reroot(mustFind(t, tr, "C").ID); err != nil {
		t.Fatalf("Reroot() error: %v", err)
	}

	m, err := tr.RecombEdgeMap()
	if err != nil {
		t.Fatalf("RecombEdgeMap() error: %v", err)
	}
	s, d := mustFind(t, tr, "S"), mustFind(t, tr, "D")
	if m["H1"] != (RecombEdge{Source: s.ID, Dest: d.ID}) {
		t.Errorf("H1 = %+v, want source S and dest D", m["H1"])
	}
	if d.Parent != mustFind(t, tr, "Y").ID {
		t.Errorf("dest parent = %d, want Y", d.Parent)
	}
	if d.Height != s.Height {
		t.Errorf("dest height = %v, want source height %v", d.Height, s.Height)
	}
	if d.BranchLength != 3 {
		t.Errorf("dest branch length = %v, want 3", d.BranchLength)
	}
}

func TestRerootSwapsReticulation(t *testing.T) {
	// (S:1(A:1,B:1)#H1, Y:3(C:1,#H1:1));
	tr := build(t, clade("", na,
		hyb(clade("S", 1, leaf("A", 1), leaf("B", 1)), "H1"),
		clade("Y", 3, leaf("C", 1), hyb(leaf("D", 1), "H1")),
	))

	if err := tr.Reroot(mustFind(t, tr, "A").ID); err != nil {
		t.Fatalf("Reroot() error: %v", err)
	}

	s, y, d := mustFind(t, tr, "S"), mustFind(t, tr, "Y"), mustFind(t, tr, "D")
	if s.IsHybrid() {
		t.Error("old source should lose its hybrid ID")
	}
	if y.HybridID != "H1" {
		t.Errorf("old dest parent hybrid ID = %q, want H1", y.HybridID)
	}
	if d.Parent != s.ID {
		t.Errorf("dest parent = %d, want S (%d)", d.Parent, s.ID)
	}
	m, err := tr.RecombEdgeMap()
	if err != nil {
		t.Fatalf("RecombEdgeMap() error: %v", err)
	}
	if m["H1"] != (RecombEdge{Source: y.ID, Dest: d.ID}) {
		t.Errorf("H1 = %+v", m["H1"])
	}
	if d.Height != y.Height || d.BranchLength != s.Height-y.Height {
		t.Errorf("dest height %v, length %v", d.Height, d.BranchLength)
	}
}

// nestedNetwork is
// (((A:1,(B:1)#H1:1)X:1,(C:1,#H1:1)#H2:1)P:1,(D:2,#H2:1)Q:1);
// where the source of H2 is also the parent of the H1 destination.
func nestedNetwork(t *testing.T) *Tree {
	return build(t, clade("", na,
		clade("P", 1,
			clade("X", 1, leaf("A", 1), hyb(clade("S1", 1, leaf("B", 1)), "H1")),
			hyb(clade("S2", 1, leaf("C", 1), hyb(leaf("D1", 1), "H1")), "H2"),
		),
		clade("Q", 1, leaf("D", 2), hyb(leaf("D2", 1), "H2")),
	))
}

func twoPairNetwork(t *testing.T) *Tree {
	return build(t, clade("", na,
		clade("P", 1,
			clade("X", 1, leaf("A", 1), hyb(clade("S1", 1, leaf("B", 1)), "H1")),
			clade("Y", 1, leaf("C", 1), hyb(leaf("D1", 1), "H1")),
		),
		clade("Q", 1,
			clade("U", 1, leaf("E", 1), hyb(clade("S2", 1, leaf("F", 1)), "H2")),
			clade("V", 1, leaf("G", 1), hyb(leaf("D2", 1), "H2")),
		),
	))
}

func snapshot(tr *Tree) []string {
	out := make([]string, 0, tr.Len())
	for _, n := range tr.Nodes() {
		out = append(out, fmt.Sprintf("%s/%d/%s/%g", n.Label, n.Parent, n.HybridID, n.BranchLength))
	}
	return out
}

func TestRerootNestedReticulation(t *testing.T) {
	t.Run("conflicting swap", func(t *testing.T) {
		tr := nestedNetwork(t)
		before := snapshot(tr)
		// S1 ends up older than S2, which already heads H2
		err := tr.Reroot(mustFind(t, tr, "A").ID)
		if !errors.Is(err, errors.ErrCodeInvalidOperation) {
			t.Fatalf("Reroot() error = %v, want %s", err, errors.ErrCodeInvalidOperation)
		}
		if after := snapshot(tr); !slices.Equal(before, after) {
			t.Errorf("tree changed on error:\n got %v\nwant %v", after, before)
		}
		if _, err := tr.RecombEdgeMap(); err != nil {
			t.Errorf("RecombEdgeMap() error after failed reroot: %v", err)
		}
	})

	t.Run("no swap", func(t *testing.T) {
		tr := nestedNetwork(t)
		if err := tr.Reroot(mustFind(t, tr, "D").ID); err != nil {
			t.Fatalf("Reroot() error: %v", err)
		}
		m, err := tr.RecombEdgeMap()
		if err != nil {
			t.Fatalf("RecombEdgeMap() error: %v", err)
		}
		if m["H1"].Source != mustFind(t, tr, "S1").ID || m["H2"].Source != mustFind(t, tr, "S2").ID {
			t.Errorf("pairs = %+v, want sources S1 and S2", m)
		}
	})
}

func TestRerootNetworkAtEveryNode(t *testing.T) {
	tests := []struct {
		name string
		tree func(*testing.T) *Tree
	}{
		{"two pairs", twoPairNetwork},
		{"nested pairs", nestedNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.tree(t)
			for id := range tr.Len() {
				if tr.Node(id).IsRoot() || tr.IsRecombDest(id) {
					continue
				}
				work := tr.Copy()
				before := snapshot(work)
				if err := work.Reroot(id); err != nil {
					if !errors.Is(err, errors.ErrCodeInvalidOperation) {
						t.Errorf("Reroot(%d) error = %v, want %s", id, err, errors.ErrCodeInvalidOperation)
					}
					if !slices.Equal(before, snapshot(work)) {
						t.Errorf("Reroot(%d) changed the tree on error", id)
					}
					continue
				}
				m, err := work.RecombEdgeMap()
				if err != nil {
					t.Errorf("Reroot(%d): RecombEdgeMap() error: %v", id, err)
					continue
				}
				if len(m) != 2 {
					t.Errorf("Reroot(%d): got %d pairs, want 2", id, len(m))
				}
				for hid, e := range m {
					src := work.Node(e.Source)
					parent := work.Node(work.Node(e.Dest).Parent)
					if src.Height > parent.Height+1e-9 {
						t.Errorf("Reroot(%d): #%s source height %v above dest parent height %v",
							id, hid, src.Height, parent.Height)
					}
				}
			}
		})
	}
}
