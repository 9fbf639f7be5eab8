package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/nodes"
)

// nodesCommand lists the registered nodes.
func (c *CLI) nodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the available nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), nodeTable(c.newRegistry()))
			return nil
		},
	}
}

// schemaCommand prints one node's info and parameter schema as JSON.
func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "schema <node>",
		Short:             "Print the parameter schema of a node as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.newRegistry().Lookup(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				node.Info
				Schema   node.Schema `json:"schema"`
				Defaults node.Params `json:"defaults"`
			}{n.Info(), n.Schema(), n.Schema().Defaults()})
		},
	}
}

func nodeTable(reg *node.Registry) string {
	rows := [][]string{}
	for _, n := range reg.All() {
		info := n.Info()
		rows = append(rows, []string{info.Name, info.DisplayName, info.ReturnName, strconv.Itoa(len(n.Schema()))})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Display name", "Returns", "Params").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return s.Inherit(styleHeader)
			case col == 0:
				return s.Foreground(colorCyan)
			}
			return s.Foreground(colorWhite)
		}).
		String()
}

// describeParam renders one schema entry for the node picker and errors.
func describeParam(p node.Param) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(" (")
	b.WriteString(strings.ToLower(string(p.Type)))
	switch {
	case p.Required():
		b.WriteString(", required")
	case len(p.Choices) > 0:
		fmt.Fprintf(&b, ", %s", strings.Join(p.Choices, "|"))
	default:
		fmt.Fprintf(&b, ", default %v", p.Default)
	}
	if p.Min != nil && p.Max != nil {
		fmt.Fprintf(&b, ", %g..%g", *p.Min, *p.Max)
	}
	b.WriteString(")")
	return b.String()
}

// completeNodes completes node names. It needs no configuration: building
// the registry touches neither vpype nor python.
func completeNodes(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nodeNames(nodes.Default("", "", nil)), cobra.ShellCompDirectiveNoFileComp
}
