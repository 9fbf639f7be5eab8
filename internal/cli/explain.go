package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/pipeline"
	"github.com/matzehuels/vpypenode/pkg/render/stagegraph"
)

// Explain output formats.
const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type explainOptions struct {
	params   paramFlags
	format   string
	output   string
	detailed bool
}

// explainCommand shows what a node would run without running it.
func (c *CLI) explainCommand() *cobra.Command {
	opts := &explainOptions{}
	cmd := &cobra.Command{
		Use:   "explain <node>",
		Short: "Show the vpype command a node would run",
		Long: `Show the vpype command a node would run for the given parameters,
without running it. Workspace paths appear as <input>, <output> and <config>.

Formats:
  text  command line, stage chain and generated config (default)
  dot   Graphviz DOT description of the stage chain
  svg   the stage chain rendered as SVG`,
		Example: `  vpypenode explain VPypeExtendedProcessor --set occult_enable=true
  vpypenode explain VPypeProcessor -f svg -o stages.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.explain(cmd, args[0], opts)
		},
	}
	opts.params.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show stage arguments in diagrams")
	return cmd
}

func (c *CLI) explain(cmd *cobra.Command, name string, opts *explainOptions) error {
	raw, err := opts.params.raw()
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c.newRegistry(), nil, nil, c.Logger)
	plan, err := runner.Plan(name, raw)
	if err != nil {
		return err
	}

	var out []byte
	gopts := stagegraph.Options{Title: name, Detailed: opts.detailed}
	switch opts.format {
	case formatText:
		var b strings.Builder
		writePlan(&b, name, plan)
		out = []byte(b.String())
	case formatDOT:
		out = []byte(stagegraph.ToDOT(plan, gopts))
	case formatSVG:
		out, err = stagegraph.RenderSVG(cmd.Context(), stagegraph.ToDOT(plan, gopts))
		if err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want text, dot or svg)", opts.format)
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(cmd.ErrOrStderr(), "Wrote %s", opts.format)
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

func writePlan(w io.Writer, name string, plan node.Plan) {
	fmt.Fprintln(w, StyleTitle.Render(name))
	printKeyValue(w, "command", shellJoin(plan.Command))
	printKeyValue(w, "stages", strings.Join(plan.Stages, " "+iconArrow+" "))
	if plan.Config != "" {
		printKeyValue(w, "config", "<config>")
		fmt.Fprintln(w)
		fmt.Fprint(w, plan.Config)
	}
}

// shellJoin joins argv, quoting tokens a shell would split or expand.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'$`\\*?;&|") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
