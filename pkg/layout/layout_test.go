package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/tree"
)

func parse(t *testing.T, s string) *tree.Tree {
	t.Helper()
	tr, err := newick.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tr
}

// plain disables every preparation step so tests see the input order.
func plain() Style {
	s := DefaultStyle()
	s.SortNodes = false
	s.MinimizeHybridSeparation = false
	return s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func pos(t *testing.T, l *Layout, label string) Position {
	t.Helper()
	n, ok := l.Tree.FindByLabel(label)
	if !ok {
		t.Fatalf("no node labelled %q", label)
	}
	p, ok := l.Positions[n.ID]
	if !ok {
		t.Fatalf("node %q has no position", label)
	}
	return p
}

func TestComputeStandard(t *testing.T) {
	l, err := Compute(parse(t, "(A:1,B:2)R:0;"), plain())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	tests := []struct {
		label string
		x, y  float64
	}{
		{"A", 0, 0.5},
		{"B", 1, 0},
		{"R", 0.5, 1},
	}
	for _, tt := range tests {
		p := pos(t, l, tt.label)
		if !near(p.X, tt.x) || !near(p.Y, tt.y) {
			t.Errorf("%s = (%v, %v), want (%v, %v)", tt.label, p.X, p.Y, tt.x, tt.y)
		}
	}
	if len(l.Groups) != 2 || l.Mode != ModeStandard {
		t.Errorf("groups = %v, mode = %s", l.Groups, l.Mode)
	}
}

func TestComputeRootStub(t *testing.T) {
	l, err := Compute(parse(t, "(A:1,B:1)R;"), plain())
	if err != nil {
		t.Fatal(err)
	}
	if p := pos(t, l, "R"); !near(p.Y, 1/1.01) {
		t.Errorf("root y = %v, want %v", p.Y, 1/1.01)
	}
}

func TestComputeLogScale(t *testing.T) {
	s := plain()
	s.LogScale = true
	s.LogScaleRelOffset = 0.5
	l, err := Compute(parse(t, "(A:1,B:2)R:0;"), s)
	if err != nil {
		t.Fatal(err)
	}
	// total 2, offset 1
	want := math.Log(2) / math.Log(3)
	if p := pos(t, l, "A"); !near(p.Y, want) {
		t.Errorf("A y = %v, want %v", p.Y, want)
	}
	if p := pos(t, l, "R"); !near(p.Y, 1) {
		t.Errorf("R y = %v, want 1", p.Y)
	}
}

func TestComputeTransmission(t *testing.T) {
	input := "((A:1,B:1)X:1,C:2)R;"

	std, err := Compute(parse(t, input), plain())
	if err != nil {
		t.Fatal(err)
	}
	s := plain()
	s.Mode = ModeTransmission
	trans, err := Compute(parse(t, input), s)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		l     *Layout
		label string
		x     float64
	}{
		{std, "X", 0.25},
		{std, "R", 0.625},
		{trans, "X", 0},
		{trans, "R", 0},
		{trans, "C", 1},
	}
	for _, tt := range tests {
		if p := pos(t, tt.l, tt.label); !near(p.X, tt.x) {
			t.Errorf("%s %s x = %v, want %v", tt.l.Mode, tt.label, p.X, tt.x)
		}
	}
}

func TestComputeRanks(t *testing.T) {
	s := plain()
	s.Mode = ModeCladogram
	for _, input := range []string{"((A:1,B:1)X:5,C:2)R;", "((A,B)X,C)R;"} {
		l, err := Compute(parse(t, input), s)
		if err != nil {
			t.Fatal(err)
		}
		for label, want := range map[string]float64{"A": 0, "C": 0, "X": 0.5, "R": 1} {
			if p := pos(t, l, label); !near(p.Y, want) {
				t.Errorf("%s: %s y = %v, want %v", input, label, p.Y, want)
			}
		}
	}
}

func TestComputeUntimedUsesRanks(t *testing.T) {
	l, err := Compute(parse(t, "((A,B)X,C)R;"), plain())
	if err != nil {
		t.Fatal(err)
	}
	if p := pos(t, l, "X"); !near(p.Y, 0.5) {
		t.Errorf("X y = %v, want 0.5", p.Y)
	}
}

const network = "((A:1,(B:1)#H1:1)X:1,(C:1,#H1:1)Y:1)R;"

func TestComputeInlineRecomb(t *testing.T) {
	l, err := Compute(parse(t, network), plain())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Groups) != 3 {
		t.Errorf("got %d groups, want 3", len(l.Groups))
	}
	m, _ := l.Tree.RecombEdgeMap()
	e := m["H1"]
	src, dst := l.Positions[e.Source], l.Positions[e.Dest]
	if !near(src.X, 0.5) || !near(dst.X, src.X) {
		t.Errorf("source x = %v, dest x = %v, want both 0.5", src.X, dst.X)
	}
	if p := pos(t, l, "Y"); !near(p.X, 1) {
		t.Errorf("Y x = %v, want 1 (dest leaf excluded)", p.X)
	}
	if len(l.RecombEdges) != 1 || l.RecombEdges[0] != (RecombEdge{HybridID: "H1", Source: e.Source, Dest: e.Dest}) {
		t.Errorf("recomb edges = %v", l.RecombEdges)
	}
}

func TestComputeDetachedRecomb(t *testing.T) {
	s := plain()
	s.InlineRecomb = false
	s.MinRecombEdgeLength = 0.5
	l, err := Compute(parse(t, network), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Groups) != 4 {
		t.Fatalf("got %d groups, want 4", len(l.Groups))
	}
	m, _ := l.Tree.RecombEdgeMap()
	dst := l.Positions[m["H1"].Dest]
	if !near(dst.X, 1) {
		t.Errorf("dest x = %v, want 1", dst.X)
	}
	if p := pos(t, l, "Y"); !near(p.X, 5.0/6) {
		t.Errorf("Y x = %v, want 5/6", p.X)
	}
	// root height 3 with a 1% stub; Y sits at height 2
	want := 2/3.03 - 0.5
	if !near(dst.Y, want) {
		t.Errorf("dest y = %v, want %v", dst.Y, want)
	}
}

func TestComputeCladogramRecomb(t *testing.T) {
	s := plain()
	s.Mode = ModeCladogram
	l, err := Compute(parse(t, network), s)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := l.Tree.RecombEdgeMap()
	e := m["H1"]
	// source rank 1 nudged by 1/2, root rank 3
	if src := l.Positions[e.Source]; !near(src.Y, 0.5) {
		t.Errorf("source y = %v, want 0.5", src.Y)
	}
	if dst := l.Positions[e.Dest]; !near(dst.Y, 0.5) {
		t.Errorf("dest y = %v, want 0.5", dst.Y)
	}
	// Y ranks above the dest, which takes the source's rank 1
	if p := pos(t, l, "Y"); !near(p.Y, 2.0/3) {
		t.Errorf("Y y = %v, want 2/3", p.Y)
	}
}

func TestComputeCladogramDestParentAboveSource(t *testing.T) {
	for _, inline := range []bool{true, false} {
		s := plain()
		s.Mode = ModeCladogram
		s.InlineRecomb = inline
		l, err := Compute(parse(t, "((A,(B)#H1),(C,#H1));"), s)
		if err != nil {
			t.Fatal(err)
		}
		m, _ := l.Tree.RecombEdgeMap()
		e := m["H1"]
		src := l.Positions[e.Source]
		parent := l.Positions[l.Tree.Node(e.Dest).Parent]
		if parent.Y <= src.Y {
			t.Errorf("inline=%v: dest parent y = %v, want above source y %v", inline, parent.Y, src.Y)
		}
	}
}

func TestComputeCollapsed(t *testing.T) {
	tests := []struct {
		name    string
		cartoon bool
		x       float64
		wedge   Wedge
	}{
		{"wedge", false, 0.25, Wedge{LeftX: 0, RightX: 0.5, BottomY: 0}},
		{"cartoon", true, 0, Wedge{LeftX: 0, RightX: 0, BottomY: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := parse(t, "((A:1,B:1)X:1,C:2)R;")
			x, _ := tr.FindByLabel("X")
			tr.SetCollapsed(x.ID, tt.cartoon)

			l, err := Compute(tr, plain())
			if err != nil {
				t.Fatal(err)
			}
			if len(l.Positions) != 3 {
				t.Errorf("got %d positions, want 3", len(l.Positions))
			}
			p := pos(t, l, "X")
			if !near(p.X, tt.x) || p.Wedge == nil || *p.Wedge != tt.wedge {
				t.Errorf("X = %+v wedge %+v, want x %v wedge %+v", p, p.Wedge, tt.x, tt.wedge)
			}
			if got := p.Tuple(); len(got) != 6 || got[3] != got[5] {
				t.Errorf("Tuple() = %v", got)
			}
			if got := pos(t, l, "C").Tuple(); len(got) != 2 {
				t.Errorf("leaf Tuple() = %v", got)
			}
		})
	}
}

func TestComputeCollapsedHidesInternalRecomb(t *testing.T) {
	tr := parse(t, network)
	r := tr.Root()
	tr.SetCollapsed(r.ID, false)

	l, err := Compute(tr, plain())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.RecombEdges) != 0 || len(l.Positions) != 1 {
		t.Errorf("positions = %v, edges = %v", l.Positions, l.RecombEdges)
	}
	if p := l.Positions[r.ID]; !near(p.X, 0.5) {
		t.Errorf("root x = %v, want 0.5", p.X)
	}
}

func TestComputeEscapedDest(t *testing.T) {
	tr := parse(t, network)
	y, _ := tr.FindByLabel("Y")
	tr.SetCollapsed(y.ID, false)

	s := plain()
	s.InlineRecomb = false
	l, err := Compute(tr, s)
	if err != nil {
		t.Fatal(err)
	}
	// A, B, dest (source lies left of Y), then Y
	if len(l.Groups) != 4 || l.Groups[2].Collapsed || !l.Groups[3].Collapsed {
		t.Fatalf("groups = %+v", l.Groups)
	}
	if len(l.RecombEdges) != 1 {
		t.Errorf("recomb edges = %v", l.RecombEdges)
	}
	if _, ok := l.Positions[l.RecombEdges[0].Dest]; !ok {
		t.Error("escaped destination leaf should be visible")
	}
}

func TestComputeSingleLeaf(t *testing.T) {
	l, err := Compute(parse(t, "A;"), plain())
	if err != nil {
		t.Fatal(err)
	}
	if p := pos(t, l, "A"); !near(p.X, 0.5) || !near(p.Y, 0) {
		t.Errorf("A = %+v", p)
	}
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	tr := parse(t, "(A:1,(B:1,C:1):1);")
	before := newick.Format(tr)
	s := DefaultStyle()
	s.SortNodesDescending = true
	if _, err := Compute(tr, s); err != nil {
		t.Fatal(err)
	}
	if after := newick.Format(tr); after != before {
		t.Errorf("input changed: %s -> %s", before, after)
	}
}

func TestComputeSorts(t *testing.T) {
	l, err := Compute(parse(t, "(A:2,(B:1,C:1):1);"), DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	if p := pos(t, l, "A"); !near(p.X, 1) {
		t.Errorf("A x = %v, want 1 after descending sort", p.X)
	}
}

func TestStyleValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Style)
		ok     bool
	}{
		{"default", func(*Style) {}, true},
		{"cladogram", func(s *Style) { s.Mode = ModeCladogram }, true},
		{"unknown mode", func(s *Style) { s.Mode = "radial" }, false},
		{"zero offset", func(s *Style) { s.LogScaleRelOffset = 0 }, false},
		{"negative offset", func(s *Style) { s.LogScaleRelOffset = -1 }, false},
		{"negative recomb length", func(s *Style) { s.MinRecombEdgeLength = -0.1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultStyle()
			tt.modify(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidStyle) {
				t.Errorf("Validate() = %v, want INVALID_STYLE", err)
			}
		})
	}

	if _, err := Compute(parse(t, "(A,B);"), Style{}); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("Compute(zero style) error = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Cladogram "); err != nil || m != ModeCladogram {
		t.Errorf("ParseMode() = %s, %v", m, err)
	}
	if _, err := ParseMode("radial"); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("ParseMode(radial) error = %v", err)
	}
}

func TestDecodeStyles(t *testing.T) {
	input := `
[styles.dated]
log_scale = true
log_scale_rel_offset = 0.01

[styles.clado]
mode = "cladogram"
inline_recomb = false
`
	styles, err := DecodeStyles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeStyles() error: %v", err)
	}
	dated := styles["dated"]
	if !dated.LogScale || dated.LogScaleRelOffset != 0.01 || dated.Mode != ModeStandard || !dated.SortNodes {
		t.Errorf("dated = %+v", dated)
	}
	clado := styles["clado"]
	if clado.Mode != ModeCladogram || clado.InlineRecomb {
		t.Errorf("clado = %+v", clado)
	}
}

func TestDecodeStylesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "[styles.a\n"},
		{"unknown key", "[styles.a]\ncolour = \"red\"\n"},
		{"bad mode", "[styles.a]\nmode = \"radial\"\n"},
		{"wrong type", "[styles.a]\nlog_scale = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeStyles(strings.NewReader(tt.input)); !errors.Is(err, errors.ErrCodeInvalidStyle) {
				t.Errorf("DecodeStyles() error = %v, want INVALID_STYLE", err)
			}
		})
	}
}
