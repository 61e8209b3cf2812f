package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/matzehuels/phylonet/pkg/buildinfo"
	"github.com/matzehuels/phylonet/pkg/errors"
	phyloio "github.com/matzehuels/phylonet/pkg/io"
)

// execute runs the root command with args, feeding stdin, and returns what
// it wrote to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, buildinfo.Version) {
		t.Errorf("version output %q should contain %q", out, buildinfo.Version)
	}
}

func TestParseCommand(t *testing.T) {
	const input = "(A:1,B:1);\n(C:1,D:1,E:1);"

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, input, "parse", "--json", "-")
		if err != nil {
			t.Fatal(err)
		}
		var got []summaryJSON
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d summaries, want 2", len(got))
		}
		if got[0].Name != "tree 1" || got[0].Leaves != 2 || got[1].Leaves != 3 {
			t.Errorf("summaries = %+v", got)
		}
		if got[0].RootHeight == nil || *got[0].RootHeight != 1 {
			t.Errorf("root height = %v, want 1", got[0].RootHeight)
		}
	})

	t.Run("untimed tree encodes null", func(t *testing.T) {
		out, _, err := execute(t, "(A,B);", "parse", "--json", "-")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, `"mean_branch_length": null`) {
			t.Errorf("output %q should encode the missing mean as null", out)
		}
	})

	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, input, "parse", "-")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"leaves", "tree 1", "tree 2"} {
			if !strings.Contains(out, want) {
				t.Errorf("table %q should contain %q", out, want)
			}
		}
	})

	t.Run("grammar error", func(t *testing.T) {
		_, _, err := execute(t, "(A,B", "parse", "-")
		if !errors.Is(err, errors.ErrCodeGrammar) {
			t.Errorf("got %v, want GRAMMAR_ERROR", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "missing.nwk"))
		if !stderrors.Is(err, fs.ErrNotExist) {
			t.Errorf("got %v, want a not-exist error", err)
		}
	})
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.nwk", "((A:1,B:1):1,C:2);")
	b := writeTemp(t, dir, "b.nwk", "(X,Y);(Y,Z);")

	out, _, err := execute(t, "", "convert", "-f", "nexus", a, b)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "Converted 2 files") {
		t.Errorf("output %q should report 2 files", out)
	}

	tests := []struct {
		path  string
		trees int
	}{
		{filepath.Join(dir, "a.nex"), 1},
		{filepath.Join(dir, "b.nex"), 2},
	}
	for _, tt := range tests {
		trees, err := phyloio.ReadFile(context.Background(), tt.path)
		if err != nil {
			t.Fatalf("read %s: %v", tt.path, err)
		}
		if len(trees) != tt.trees {
			t.Errorf("%s has %d trees, want %d", tt.path, len(trees), tt.trees)
		}
	}

	t.Run("output dir", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		if _, _, err := execute(t, "", "convert", "-f", "phyloxml", "-o", outDir, a); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "a.phyloxml")); err != nil {
			t.Error(err)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, _, err := execute(t, "", "convert", "-f", "newick", a)
		if !errors.Is(err, errors.ErrCodeInvalidOperation) {
			t.Errorf("got %v, want INVALID_OPERATION", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := execute(t, "", "convert", "-f", "fasta", a)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("got %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("one broken file fails the batch", func(t *testing.T) {
		broken := writeTemp(t, t.TempDir(), "broken.nwk", "(A,B;")
		_, _, err := execute(t, "", "convert", "-f", "nexml", a, broken)
		if !errors.Is(err, errors.ErrCodeGrammar) {
			t.Errorf("got %v, want GRAMMAR_ERROR", err)
		}
	})
}

func TestConvertedPath(t *testing.T) {
	tests := []struct {
		input, outDir string
		format        phyloio.Format
		want          string
	}{
		{"trees/a.nwk", "", phyloio.FormatNexus, filepath.Join("trees", "a.nex")},
		{"a.tree.nwk", "", phyloio.FormatNeXML, "a.tree.nexml"},
		{"trees/a.nex", "out", phyloio.FormatPhyloXML, filepath.Join("out", "a.phyloxml")},
		{"noext", "", phyloio.FormatNewick, "noext.nwk"},
	}

	for _, tt := range tests {
		if got := convertedPath(tt.input, tt.outDir, tt.format); got != tt.want {
			t.Errorf("convertedPath(%q, %q, %s) = %q, want %q", tt.input, tt.outDir, tt.format, got, tt.want)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	const input = "(A:1,B:2)R:0;"

	t.Run("stdout json", func(t *testing.T) {
		out, _, err := execute(t, input, "layout", "--labels", "-")
		if err != nil {
			t.Fatal(err)
		}
		var doc struct {
			Mode  string `json:"mode"`
			Nodes []struct {
				Label  string    `json:"label"`
				Coords []float64 `json:"coords"`
			} `json:"nodes"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if doc.Mode != "standard" || len(doc.Nodes) != 3 {
			t.Errorf("doc = %+v", doc)
		}
	})

	t.Run("flags override style", func(t *testing.T) {
		out, _, err := execute(t, input, "layout", "--mode", "cladogram", "--format", "yaml", "-")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "mode: cladogram") {
			t.Errorf("output %q should use cladogram mode", out)
		}
	})

	t.Run("config file", func(t *testing.T) {
		cfg := writeTemp(t, t.TempDir(), "phylonet.yaml", "layout:\n  mode: transmission\n")
		out, _, err := execute(t, input, "--config", cfg, "layout", "-")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, `"transmission"`) {
			t.Errorf("output %q should use the configured mode", out)
		}
	})

	t.Run("output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layout.json")
		_, errOut, err := execute(t, input, "layout", "-o", path, "-")
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !json.Valid(data) {
			t.Errorf("%s is not valid JSON", path)
		}
		if !strings.Contains(errOut, "Layout complete") {
			t.Errorf("stderr %q should confirm the layout", errOut)
		}
	})

	errTests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad mode", []string{"--mode", "radial"}, errors.ErrCodeInvalidStyle},
		{"tree out of range", []string{"--tree", "3"}, errors.ErrCodeNotFound},
		{"unknown collapse label", []string{"--collapse", "Z"}, errors.ErrCodeNotFound},
		{"style without style file", []string{"--style", "dated"}, errors.ErrCodeInvalidStyle},
		{"bad output format", []string{"--format", "svg"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"layout"}, tt.args...)
			_, _, err := execute(t, input, append(args, "-")...)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStatsCommand(t *testing.T) {
	out, _, err := execute(t, "((A:1,B:1):1,C:2);", "stats", "--ltt", "--skyline", "-")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"leaves", "colless", "Lineages through time", "Skyline"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}

	_, _, err = execute(t, "((A,B),C);", "stats", "--ltt", "-")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("LTT of an untimed tree: got %v, want INVALID_INPUT", err)
	}
}

func TestRerootCommand(t *testing.T) {
	const input = "((A:1,B:1)X:1,C:2)R;"

	out, _, err := execute(t, input, "reroot", "--label", "C", "-")
	if err != nil {
		t.Fatal(err)
	}
	trees, err := phyloio.Parse(context.Background(), out)
	if err != nil {
		t.Fatalf("reparse %q: %v", out, err)
	}
	got := trees[0]
	c, ok := got.FindByLabel("C")
	if !ok || c.Parent != got.Root().ID {
		t.Errorf("C should hang off the new root in %q", out)
	}

	out, _, err = execute(t, input, "reroot", "--label", "C", "-f", "nexus", "-")
	if err != nil {
		t.Fatal(err)
	}
	if phyloio.Detect(out) != phyloio.FormatNexus {
		t.Errorf("output %q should be NEXUS", out)
	}

	if _, _, err := execute(t, input, "reroot", "--label", "Z", "-"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown label: got %v, want NOT_FOUND", err)
	}
	if _, _, err := execute(t, input, "reroot", "-"); err == nil {
		t.Error("missing --label should fail")
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, _, err := execute(t, "", "completion", shell)
		if err != nil {
			t.Errorf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s output does not mention %s", shell, appName)
		}
	}
}

func TestFlagCompletion(t *testing.T) {
	dir := t.TempDir()
	styles := writeTemp(t, dir, "styles.toml", "[styles.ranks]\nmode = \"cladogram\"\n\n[styles.dated]\nlog_scale = true\n")
	cfg := writeTemp(t, dir, "phylonet.yaml", "style_file: "+styles+"\n")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant string
	}{
		{"tree formats", []string{"convert", "--format", ""}, []string{"newick", "nexml"}, "yaml"},
		{"input formats", []string{"stats", "--input-format", ""}, []string{"nexus", "phyloxml"}, ""},
		{"layout outputs", []string{"layout", "--format", ""}, []string{"json", "yaml"}, "nexus"},
		{"modes", []string{"layout", "--mode", ""}, []string{"standard", "cladogram", "transmission"}, ""},
		{"styles", []string{"layout", "--config", cfg, "--style", ""}, []string{"dated\nranks"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"__complete"}, tt.args...)...)
			if err != nil {
				t.Fatalf("__complete: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("completions = %q, want %q", out, w)
				}
			}
			if tt.notWant != "" && strings.Contains(out, tt.notWant) {
				t.Errorf("completions = %q, should not contain %q", out, tt.notWant)
			}
		})
	}
}

func TestTreeIndex(t *testing.T) {
	tests := []struct {
		n, count int
		want     int
		wantErr  bool
	}{
		{1, 1, 0, false},
		{3, 3, 2, false},
		{0, 3, 0, true},
		{4, 3, 0, true},
	}

	for _, tt := range tests {
		got, err := treeIndex(tt.n, tt.count)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("treeIndex(%d, %d) = %d, %v; want %d, error %v", tt.n, tt.count, got, err, tt.want, tt.wantErr)
		}
	}
}
