package stats

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/phylonet/pkg/errors"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// Series is a lineages-through-time curve, oldest point first. Lineages[i]
// is the number of lineages just younger than Ages[i].
type Series struct {
	Ages     []float64 `json:"ages" yaml:"ages"`
	Lineages []int     `json:"lineages" yaml:"lineages"`
}

type event struct {
	age   float64
	delta int
}

// LTT returns the lineages-through-time series of t. The curve starts with
// one lineage above the root; every node adds one lineage per extra child
// and every leaf ends one. t must be a time tree.
func LTT(t *tree.Tree) (Series, error) {
	if !t.IsTimeTree() {
		return Series{}, errors.New(errors.ErrCodeInvalidInput, "lineages through time need branch lengths on every node")
	}

	events := make([]event, 0, t.Len())
	for _, n := range t.Nodes() {
		if n.IsLeaf() {
			events = append(events, event{n.Height, -1})
		} else if len(n.Children) > 1 {
			events = append(events, event{n.Height, len(n.Children) - 1})
		}
	}
	slices.SortStableFunc(events, func(a, b event) int { return cmp.Compare(b.age, a.age) })

	var s Series
	lineages := 1
	for i, e := range events {
		lineages += e.delta
		if i+1 < len(events) && events[i+1].age == e.age {
			continue
		}
		s.Ages = append(s.Ages, e.age)
		s.Lineages = append(s.Lineages, lineages)
	}
	return s, nil
}

// SkylinePlot is a classic skyline plot: one effective population size
// estimate per interval between consecutive events, oldest first.
type SkylinePlot struct {
	Start    []float64 `json:"start" yaml:"start"`
	End      []float64 `json:"end" yaml:"end"`
	Lineages []int     `json:"lineages" yaml:"lineages"`
	Theta    []float64 `json:"theta" yaml:"theta"`
}

// Skyline estimates theta = interval * k(k-1)/2 for every interval carrying
// k >= 2 lineages. Start is the older end of each interval. t must be a time
// tree.
func Skyline(t *tree.Tree) (SkylinePlot, error) {
	s, err := LTT(t)
	if err != nil {
		return SkylinePlot{}, err
	}

	var sky SkylinePlot
	var pairs []float64
	for i := 0; i+1 < len(s.Ages); i++ {
		k := s.Lineages[i]
		if k < 2 {
			continue
		}
		sky.Start = append(sky.Start, s.Ages[i])
		sky.End = append(sky.End, s.Ages[i+1])
		sky.Lineages = append(sky.Lineages, k)
		pairs = append(pairs, float64(k*(k-1))/2)
	}
	sky.Theta = make([]float64, len(pairs))
	if len(pairs) > 0 {
		floats.SubTo(sky.Theta, sky.Start, sky.End)
		floats.Mul(sky.Theta, pairs)
	}
	return sky, nil
}
