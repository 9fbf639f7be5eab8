package nodes

import (
	"context"

	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/vpype"
)

// Processor is the basic SVG processor: merge, simplify, sort, rotate and
// fit the drawing onto a page, always in that order.
type Processor struct {
	tool *vpype.Tool
}

// NewProcessor creates the basic processor.
func NewProcessor(tool *vpype.Tool) *Processor {
	return &Processor{tool: tool}
}

func (n *Processor) Info() node.Info {
	return node.Info{
		Name:        NameProcessor,
		DisplayName: "VPype SVG Processor",
		Category:    node.DefaultCategory,
		ReturnName:  returnSVG,
		Description: "Merge, simplify, sort, rotate and lay out an SVG for plotting.",
	}
}

func (n *Processor) Schema() node.Schema {
	return node.Schema{
		documentInput(),
		node.Float("merge_tolerance", 0.1, 0, 10, 0.01).WithHelp("linemerge tolerance in mm; 0 disables"),
		node.Float("simplify_tolerance", 0.05, 0, 10, 0.01).WithHelp("linesimplify tolerance in mm; 0 disables"),
		node.Float("rotation", 90, -360, 360, 1).WithHelp("rotation in degrees; 0 disables"),
		node.Float("margin", 10, 0, 100, 0.1).WithHelp("page margin in mm"),
		node.Float("width", 210, 10, 5000, 1).WithHelp("page width in mm"),
		node.Float("height", 297, 10, 5000, 1).WithHelp("page height in mm"),
	}
}

func (n *Processor) options(p node.Params) vpype.Options {
	return vpype.Options{
		Merge:              p.Float("merge_tolerance") > 0,
		MergeTolerance:     p.Float("merge_tolerance"),
		Simplify:           p.Float("simplify_tolerance") > 0,
		SimplifyTolerance:  p.Float("simplify_tolerance"),
		Sort:               true,
		Rotate:             p.Float("rotation"),
		Layout:             true,
		LayoutFitToMargins: true,
		LayoutMargin:       p.Float("margin"),
		LayoutWidth:        p.Float("width"),
		LayoutHeight:       p.Float("height"),
		LayoutAlign:        vpype.AlignCenter,
		LayoutVAlign:       vpype.AlignCenter,
	}
}

func (n *Processor) Run(ctx context.Context, p node.Params) (string, error) {
	opts := n.options(p)
	return n.tool.Process(ctx, p.String(documentParam), "output.svg", func(_ *vpype.Workspace, in, out string) ([]string, error) {
		return vpype.Build(opts, in, out), nil
	})
}

func (n *Processor) Plan(p node.Params) (node.Plan, error) {
	opts := n.options(p)
	return node.Plan{
		Command: plannedCommand(n.tool.Bin, vpype.Build(opts, InputPlaceholder, OutputPlaceholder)),
		Stages:  vpype.Stages(opts),
	}, nil
}
