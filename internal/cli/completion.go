package cli

import (
	"slices"

	"github.com/spf13/cobra"

	phyloio "github.com/matzehuels/phylonet/pkg/io"
	"github.com/matzehuels/phylonet/pkg/layout"
	"github.com/matzehuels/phylonet/pkg/pipeline"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a completion script for one of shells.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for phylonet. Flag values such as --format,
--mode and --style complete from the supported formats, layout modes and the
presets of the configured style_file.

Bash:
  $ source <(phylonet completion bash)

Zsh:
  $ phylonet completion zsh > "${fpath[1]}/_phylonet"

Fish:
  $ phylonet completion fish | source

PowerShell:
  PS> phylonet completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return root.GenBashCompletionV2(w, true)
			}
		},
	}
}

// registerCompletions attaches flag value completions to every subcommand
// of root. The layout command's --format names an export format; elsewhere
// it names a tree format.
func (c *CLI) registerCompletions(root *cobra.Command) {
	treeFormats := make([]string, len(phyloio.Formats))
	for i, f := range phyloio.Formats {
		treeFormats[i] = string(f)
	}
	modes := make([]string, len(layout.Modes))
	for i, m := range layout.Modes {
		modes[i] = string(m)
	}
	outputs := []string{pipeline.OutputJSON, pipeline.OutputYAML}

	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("input-format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("input-format", fixedCompletion(treeFormats))
		}
		if cmd.Flags().Lookup("format") != nil {
			values := treeFormats
			if cmd.Name() == "layout" {
				values = outputs
			}
			_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(values))
		}
		if cmd.Flags().Lookup("mode") != nil {
			_ = cmd.RegisterFlagCompletionFunc("mode", fixedCompletion(modes))
		}
		if cmd.Flags().Lookup("style") != nil {
			_ = cmd.RegisterFlagCompletionFunc("style", c.completeStyles)
		}
	}
}

func fixedCompletion(values []string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeStyles lists the presets of the configured style file. Completion
// runs without the persistent pre-run, so the config is loaded here.
func (c *CLI) completeStyles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(); err != nil || c.Config.StyleFile == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	presets, err := layout.LoadStyleFile(c.Config.StyleFile)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}
