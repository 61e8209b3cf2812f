package layout

import (
	"math"
	"strings"

	"github.com/matzehuels/phylonet/pkg/errors"
)

// Mode selects the layout strategy.
type Mode string

const (
	// ModeStandard places internal nodes at the mean of their children and
	// scales heights by time when the tree has branch lengths.
	ModeStandard Mode = "standard"
	// ModeCladogram ignores branch lengths and places nodes by rank.
	ModeCladogram Mode = "cladogram"
	// ModeTransmission places each internal node above its first child.
	ModeTransmission Mode = "transmission"
)

// Modes lists the supported layout modes.
var Modes = []Mode{ModeStandard, ModeCladogram, ModeTransmission}

// Default style values.
const (
	DefaultLogScaleRelOffset   = 0.001
	DefaultMinRecombEdgeLength = 0.05
)

// Style holds the parameters of a layout run. The zero value is not valid;
// start from [DefaultStyle].
type Style struct {
	Mode                     Mode    `toml:"mode" json:"mode" yaml:"mode" mapstructure:"mode"`
	LogScale                 bool    `toml:"log_scale" json:"log_scale" yaml:"log_scale" mapstructure:"log_scale"`
	LogScaleRelOffset        float64 `toml:"log_scale_rel_offset" json:"log_scale_rel_offset" yaml:"log_scale_rel_offset" mapstructure:"log_scale_rel_offset"`
	SortNodes                bool    `toml:"sort_nodes" json:"sort_nodes" yaml:"sort_nodes" mapstructure:"sort_nodes"`
	SortNodesDescending      bool    `toml:"sort_nodes_descending" json:"sort_nodes_descending" yaml:"sort_nodes_descending" mapstructure:"sort_nodes_descending"`
	InlineRecomb             bool    `toml:"inline_recomb" json:"inline_recomb" yaml:"inline_recomb" mapstructure:"inline_recomb"`
	MinRecombEdgeLength      float64 `toml:"min_recomb_edge_length" json:"min_recomb_edge_length" yaml:"min_recomb_edge_length" mapstructure:"min_recomb_edge_length"`
	CollapseZeroLengthEdges  bool    `toml:"collapse_zero_length_edges" json:"collapse_zero_length_edges" yaml:"collapse_zero_length_edges" mapstructure:"collapse_zero_length_edges"`
	MinimizeHybridSeparation bool    `toml:"minimize_hybrid_separation" json:"minimize_hybrid_separation" yaml:"minimize_hybrid_separation" mapstructure:"minimize_hybrid_separation"`
}

// DefaultStyle returns the standard layout with sorted nodes and inline
// reticulations.
func DefaultStyle() Style {
	return Style{
		Mode:                     ModeStandard,
		LogScaleRelOffset:        DefaultLogScaleRelOffset,
		SortNodes:                true,
		SortNodesDescending:      true,
		InlineRecomb:             true,
		MinRecombEdgeLength:      DefaultMinRecombEdgeLength,
		MinimizeHybridSeparation: true,
	}
}

// ParseMode resolves a mode name, ignoring case.
func ParseMode(name string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidStyle, "unknown layout mode %q", name)
}

// Validate reports an INVALID_STYLE error for unknown modes, non-positive
// log offsets and negative reticulation edge lengths.
func (s Style) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if !(s.LogScaleRelOffset > 0) || math.IsInf(s.LogScaleRelOffset, 0) {
		return errors.New(errors.ErrCodeInvalidStyle, "log scale offset must be positive, got %v", s.LogScaleRelOffset)
	}
	if s.MinRecombEdgeLength < 0 || math.IsNaN(s.MinRecombEdgeLength) {
		return errors.New(errors.ErrCodeInvalidStyle, "minimum reticulation edge length must not be negative, got %v", s.MinRecombEdgeLength)
	}
	return nil
}
