package sink

import (
	"bytes"
	"os"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/layout"
)

func compute(t *testing.T, input string, collapse string) *layout.Layout {
	t.Helper()
	tr, err := newick.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	tr.Name = "sample"
	if collapse != "" {
		n, _ := tr.FindByLabel(collapse)
		tr.SetCollapsed(n.ID, false)
	}
	s := layout.DefaultStyle()
	s.SortNodes = false
	l, err := layout.Compute(tr, s)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestJSON(t *testing.T) {
	l := compute(t, "((A:1,B:1)X[&rate=2]:1,C:2)R;", "X")

	var buf bytes.Buffer
	if err := JSON(&buf, l, WithLabels()); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var out document
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Name != "sample" || out.Mode != layout.ModeStandard {
		t.Errorf("name = %q, mode = %q", out.Name, out.Mode)
	}
	if len(out.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(out.Nodes))
	}
	if root := out.Nodes[0]; root.Parent != nil || root.Label != "R" {
		t.Errorf("root = %+v", root)
	}
	x := out.Nodes[1]
	if x.Label != "X" || !x.Collapsed || len(x.Coords) != 6 || x.Annotation["rate"] != "2" {
		t.Errorf("collapsed node = %+v", x)
	}
	if x.Parent == nil || *x.Parent != out.Nodes[0].ID {
		t.Errorf("collapsed parent = %v", x.Parent)
	}
	if len(out.Groups) != 2 || !out.Groups[0].Collapsed {
		t.Errorf("groups = %+v", out.Groups)
	}
	if !strings.Contains(buf.String(), "\n  \"mode\"") {
		t.Errorf("expected indented output:\n%s", buf.String())
	}
}

func TestJSONOptions(t *testing.T) {
	l := compute(t, "(A:1,B:1)R;", "")

	var buf bytes.Buffer
	if err := JSON(&buf, l, WithIndent("")); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(strings.TrimSpace(buf.String()), "\n"); lines != 0 {
		t.Errorf("compact output has %d newlines", lines)
	}
	if strings.Contains(buf.String(), `"label"`) {
		t.Error("labels written without WithLabels")
	}
}

func TestJSONRecombEdges(t *testing.T) {
	l := compute(t, "((A:1,(B:1)#H1:1)X:1,(C:1,#H1:1)Y:1)R;", "")

	var buf bytes.Buffer
	if err := JSON(&buf, l); err != nil {
		t.Fatal(err)
	}
	var out document
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.RecombEdges) != 1 || out.RecombEdges[0].HybridID != "H1" {
		t.Errorf("recomb edges = %+v", out.RecombEdges)
	}
}

func TestYAML(t *testing.T) {
	l := compute(t, "((A:1,B:1)X:1,C:2)R;", "")

	var buf bytes.Buffer
	if err := YAML(&buf, l, WithLabels()); err != nil {
		t.Fatalf("YAML() error: %v", err)
	}

	var out document
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if len(out.Nodes) != 5 || out.Style.Mode != layout.ModeStandard {
		t.Errorf("nodes = %d, style = %+v", len(out.Nodes), out.Style)
	}
	if !strings.Contains(buf.String(), "coords: [") {
		t.Errorf("coords should use flow style:\n%s", buf.String())
	}
}

func ExampleJSON() {
	tr, _ := newick.Parse("(A:1,B:1):1;")
	s := layout.DefaultStyle()
	l, _ := layout.Compute(tr, s)
	_ = JSON(os.Stdout, l, WithIndent(""))
	// Output:
	// {"mode":"standard","style":{"mode":"standard","log_scale":false,"log_scale_rel_offset":0.001,"sort_nodes":true,"sort_nodes_descending":true,"inline_recomb":true,"min_recomb_edge_length":0.05,"collapse_zero_length_edges":false,"minimize_hybrid_separation":true},"nodes":[{"id":0,"coords":[0.5,0.5]},{"id":1,"parent":0,"coords":[0,0]},{"id":2,"parent":0,"coords":[1,0]}],"groups":[{"node":1,"left":0,"right":0},{"node":2,"left":1,"right":1}]}
}
