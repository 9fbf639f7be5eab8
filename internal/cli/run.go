package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/nodes"
	"github.com/matzehuels/vpypenode/pkg/pipeline"
)

type runOptions struct {
	params  paramFlags
	input   string
	output  string
	noCache bool
}

// runCommand runs one node.
func (c *CLI) runCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [node]",
		Short: "Run a node on an SVG document",
		Long: `Run a node on an SVG document read from a file (-i) or stdin.

The result is written to stdout unless -o is given. Without a node name on an
interactive terminal, a picker lists the available nodes.`,
		Example: `  vpypenode run VPypeProcessor -i drawing.svg -o plot.svg
  vpypenode run VPypeGCodeGenerator -i plot.svg --set pen_up=8 -o plot.gcode
  cat drawing.svg | vpypenode run VPypeBorderRemover --set threshold=0.8 > clean.svg`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args, opts)
		},
	}
	opts.params.register(cmd)
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input SVG file (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the result cache for this run")
	return cmd
}

func (c *CLI) run(cmd *cobra.Command, args []string, opts *runOptions) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	n, err := c.selectNode(runner.Registry, args)
	if err != nil {
		return err
	}
	name := n.Info().Name

	raw, err := opts.params.raw()
	if err != nil {
		return err
	}
	if doc, ok := documentParam(n); ok {
		if err := c.attachInput(raw, doc, opts.input); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	display := n.Info().DisplayName
	spin := newSpinner(ctx, stderr, "Running "+name+"...")
	spin.Start()
	defer spin.Stop()

	res, err := runner.Run(ctx, pipeline.Request{Node: name, Params: raw, NoCache: opts.noCache})
	if err != nil {
		if !spin.Cancelled() {
			spin.StopWithError(display + " failed")
		}
		return err
	}

	if opts.output == "" {
		spin.Stop()
		_, err := io.WriteString(cmd.OutOrStdout(), res.Output)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(res.Output), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	spin.StopWithSuccess(display + " finished")
	printFile(stderr, opts.output)
	printRunStats(stderr, len(res.Output), res.Duration, res.Cached)
	if outputExt(n.Info()) == ".svg" {
		printNextStep(stderr, "Generate G-code", "vpypenode run "+nodes.NameGCodeGenerator+" -i "+opts.output)
	}
	return nil
}

// selectNode resolves the node named in args, or asks for one on a terminal.
func (c *CLI) selectNode(reg *node.Registry, args []string) (node.Node, error) {
	if len(args) == 1 {
		return reg.Lookup(args[0])
	}
	if isTerminal(c.stdin) && isTerminal(os.Stderr) {
		return pickNode(reg)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"node name required, one of: %s", strings.Join(nodeNames(reg), ", "))
}

// attachInput fills the document parameter from -i, or from stdin when it
// is piped. An explicit --set for the document wins.
func (c *CLI) attachInput(raw map[string]any, doc, input string) error {
	if _, ok := raw[doc]; ok && input == "" {
		return nil
	}
	switch {
	case input != "" && input != "-":
		info, err := os.Stat(input)
		if err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", input)
		}
		if !info.Mode().IsRegular() {
			return errors.New(errors.ErrCodeInvalidInput, "input %s is not a regular file", input)
		}
		raw[doc] = input
	case input == "-" || !isTerminal(c.stdin):
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		if len(data) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "empty document on stdin")
		}
		raw[doc] = string(data)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "no input: pass -i FILE or pipe an SVG on stdin")
	}
	return nil
}
