// Package pipeline runs the parse → prepare → layout → export pipeline used
// by the phylonet CLI.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: read every tree of a document (format detected or forced)
//  2. Prepare: pick one tree and apply structural edits to a copy (reroot,
//     collapse clades, strip zero-length pendant edges)
//  3. Layout: compute node coordinates with a [layout.Style]
//  4. Export: serialize the layout as JSON or YAML
//
// Each stage can be run on its own through the [Runner] methods.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Reroot:   "Outgroup",
//	    Collapse: []string{"Primates"},
//	    Style:    layout.DefaultStyle(),
//	    Output:   pipeline.OutputJSON,
//	}
//	result, err := runner.Execute(ctx, input, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifact)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/tree"
)

// =============================================================================
// Default Values
// =============================================================================

// Output formats for the export stage.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultOutput is the default export format.
const DefaultOutput = OutputJSON

// ValidOutputs is the set of supported export formats.
var ValidOutputs = map[string]bool{
	OutputJSON: true,
	OutputYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Parse options
	Format phyloio.Format `json:"format,omitempty"` // empty = detect

	// Prepare options
	TreeIndex       int      `json:"tree_index,omitempty"` // zero-based
	Reroot          string   `json:"reroot,omitempty"`     // label of the node above the new root
	Collapse        []string `json:"collapse,omitempty"`   // labels of clades to collapse
	Cartoon         bool     `json:"cartoon,omitempty"`    // draw collapsed clades as one slot
	StripZeroLength bool     `json:"strip_zero_length,omitempty"`

	// Layout options
	Style layout.Style `json:"style"`

	// Export options
	Output string `json:"output,omitempty"`
	Labels bool   `json:"labels,omitempty"`
	Indent string `json:"indent,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Trees are all trees parsed from the input.
	Trees []*tree.Tree

	// Tree is the prepared copy of the selected tree.
	Tree *tree.Tree

	// Layout is the computed layout of Tree.
	Layout *layout.Layout

	// Artifact is the serialized layout.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TreeCount   int
	NodeCount   int
	ParseTime   time.Duration
	PrepareTime time.Duration
	LayoutTime  time.Duration
	ExportTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateOutput checks that an export format is valid.
func ValidateOutput(output string) error {
	if !ValidOutputs[output] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid output: %q (must be one of: json, yaml)", output)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults. A zero
// Style is replaced by [layout.DefaultStyle].
func (o *Options) ValidateAndSetDefaults() error {
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if err := ValidateOutput(o.Output); err != nil {
		return err
	}
	if o.Style == (layout.Style{}) {
		o.Style = layout.DefaultStyle()
	}
	if err := o.Style.Validate(); err != nil {
		return err
	}
	if o.TreeIndex < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tree index must not be negative, got %d", o.TreeIndex)
	}
	return nil
}
