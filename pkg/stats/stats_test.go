package stats

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/io/newick"
	"github.com/matzehuels/phylonet/pkg/tree"
)

const network = "((A:1,(B:1)#H1:1)X:1,(C:1,#H1:1)Y:1)R;"

func parse(t *testing.T, s string) *tree.Tree {
	t.Helper()
	tr, err := newick.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tr
}

func TestLeafCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"A;", 1},
		{"((A,B),C);", 3},
		{network, 3},
	}
	for _, tt := range tests {
		if got := LeafCount(parse(t, tt.input)); got != tt.want {
			t.Errorf("LeafCount(%s) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestColless(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"((A,B),(C,D));", 0},
		{"(((A,B),C),D);", 3},
		{"(A,B,C);", 0},
		{network, 1},
	}
	for _, tt := range tests {
		if got := Colless(parse(t, tt.input)); got != tt.want {
			t.Errorf("Colless(%s) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestLTT(t *testing.T) {
	tests := []struct {
		input    string
		ages     []float64
		lineages []int
	}{
		{"((A:1,B:1):1,C:2);", []float64{2, 1, 0}, []int{2, 3, 0}},
		{"(A:1,B:2);", []float64{2, 1, 0}, []int{2, 1, 0}},
		{network, []float64{3, 2, 1, 0}, []int{2, 4, 1, 0}},
	}
	for _, tt := range tests {
		s, err := LTT(parse(t, tt.input))
		if err != nil {
			t.Fatalf("LTT(%s) error: %v", tt.input, err)
		}
		if !slices.Equal(s.Ages, tt.ages) || !slices.Equal(s.Lineages, tt.lineages) {
			t.Errorf("LTT(%s) = %v / %v, want %v / %v", tt.input, s.Ages, s.Lineages, tt.ages, tt.lineages)
		}
	}
}

func TestSkyline(t *testing.T) {
	sky, err := Skyline(parse(t, "((A:1,B:1):1,C:2);"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(sky.Start, []float64{2, 1}) || !slices.Equal(sky.End, []float64{1, 0}) {
		t.Errorf("intervals = %v - %v", sky.Start, sky.End)
	}
	if !slices.Equal(sky.Lineages, []int{2, 3}) || !slices.Equal(sky.Theta, []float64{1, 3}) {
		t.Errorf("lineages = %v, theta = %v", sky.Lineages, sky.Theta)
	}
}

func TestRequiresTimeTree(t *testing.T) {
	tr := parse(t, "((A,B),C);")
	if _, err := LTT(tr); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("LTT() error = %v", err)
	}
	if _, err := Skyline(tr); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Skyline() error = %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(parse(t, network))
	want := Summary{
		Nodes:            8,
		Leaves:           3,
		Reticulations:    1,
		TimeTree:         true,
		Length:           7,
		RootHeight:       3,
		MeanBranchLength: 1,
		Colless:          1,
	}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}

	untimed := Summarize(parse(t, "(A,B);"))
	if untimed.TimeTree || !math.IsNaN(untimed.MeanBranchLength) {
		t.Errorf("untimed summary = %+v", untimed)
	}
}

func ExampleLTT() {
	tr, _ := newick.Parse("((A:1,B:1):1,C:2);")
	s, _ := LTT(tr)
	for i := range s.Ages {
		fmt.Printf("%g %d\n", s.Ages[i], s.Lineages[i])
	}
	// Output:
	// 2 2
	// 1 3
	// 0 0
}
