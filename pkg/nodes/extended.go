package nodes

import (
	"context"

	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/vpype"
)

// ExtendedProcessor exposes every pipeline stage with its own switch.
// Layers are split by stroke color on read.
type ExtendedProcessor struct {
	tool *vpype.Tool
}

// NewExtendedProcessor creates the extended processor.
func NewExtendedProcessor(tool *vpype.Tool) *ExtendedProcessor {
	return &ExtendedProcessor{tool: tool}
}

func (n *ExtendedProcessor) Info() node.Info {
	return node.Info{
		Name:        NameExtendedProcessor,
		DisplayName: "VPype SVG Processor (Extended)",
		Category:    node.DefaultCategory,
		ReturnName:  returnSVG,
		Description: "Full vpype pipeline with per-stage switches, occlusion and transforms.",
	}
}

func (n *ExtendedProcessor) Schema() node.Schema {
	return node.Schema{
		documentInput(),

		node.Bool("linemerge_enable", true),
		node.Float("linemerge_tolerance", 0.1, 0, 10, 0.01),
		node.Bool("linesimplify_enable", true),
		node.Float("linesimplify_tolerance", 0.05, 0, 10, 0.01),
		node.Bool("reloop_enable", false),
		node.Float("reloop_tolerance", 0.05, 0, 10, 0.01),

		node.Bool("squiggles_enable", false),
		node.Float("squiggles_amplitude", 0.5, 0, 50, 0.1),
		node.Float("squiggles_period", 3, 0.1, 100, 0.1),
		node.Float("filter_min_length", 0, 0, 100, 0.1).WithHelp("drop paths shorter than this (mm); 0 disables"),

		node.Bool("occult_enable", false).WithHelp("requires the vpype-occult plugin"),
		node.Bool("occult_ignore_layers", false),
		node.Bool("occult_cross_layers", false),
		node.Bool("occult_keep_occulted", false),

		node.Bool("linesort_enable", true),
		node.Bool("linesort_two_opt", false),
		node.Int("multipass_count", 1, 1, 50, 1),

		node.Float("rotate_angle", 0, -360, 360, 1),
		node.Float("skew_x", 0, -89.9, 89.9, 1),
		node.Float("skew_y", 0, -89.9, 89.9, 1),
		node.Float("scale_x", 1, 0.01, 100, 0.01),
		node.Float("scale_y", 1, 0.01, 100, 0.01),

		node.Bool("layout_enable", true),
		node.Float("layout_width", 210, 10, 5000, 1),
		node.Float("layout_height", 297, 10, 5000, 1),
		node.Float("layout_margin", 10, 0, 100, 0.1),
		node.Choice("layout_align", vpype.AlignCenter, vpype.AlignLeft, vpype.AlignRight),
		node.Choice("layout_valign", vpype.AlignCenter, vpype.AlignTop, vpype.AlignBottom),
		node.Bool("layout_fit_to_margins", true),
	}
}

func (n *ExtendedProcessor) options(p node.Params) vpype.Options {
	return vpype.Options{
		ReadAttr: "stroke",

		Merge:             p.Bool("linemerge_enable"),
		MergeTolerance:    p.Float("linemerge_tolerance"),
		Simplify:          p.Bool("linesimplify_enable"),
		SimplifyTolerance: p.Float("linesimplify_tolerance"),
		Reloop:            p.Bool("reloop_enable"),
		ReloopTolerance:   p.Float("reloop_tolerance"),

		Squiggles:          p.Bool("squiggles_enable"),
		SquigglesAmplitude: p.Float("squiggles_amplitude"),
		SquigglesPeriod:    p.Float("squiggles_period"),
		FilterMinLength:    p.Float("filter_min_length"),

		Occult:             p.Bool("occult_enable"),
		OccultIgnoreLayers: p.Bool("occult_ignore_layers"),
		OccultAcrossLayers: p.Bool("occult_cross_layers"),
		OccultKeepOcculted: p.Bool("occult_keep_occulted"),

		Sort:           p.Bool("linesort_enable"),
		SortTwoOpt:     p.Bool("linesort_two_opt"),
		MultipassCount: p.Int("multipass_count"),

		Rotate: p.Float("rotate_angle"),
		SkewX:  p.Float("skew_x"),
		SkewY:  p.Float("skew_y"),
		ScaleX: p.Float("scale_x"),
		ScaleY: p.Float("scale_y"),

		Layout:             p.Bool("layout_enable"),
		LayoutFitToMargins: p.Bool("layout_fit_to_margins"),
		LayoutMargin:       p.Float("layout_margin"),
		LayoutWidth:        p.Float("layout_width"),
		LayoutHeight:       p.Float("layout_height"),
		LayoutAlign:        p.String("layout_align"),
		LayoutVAlign:       p.String("layout_valign"),
	}
}

func (n *ExtendedProcessor) Run(ctx context.Context, p node.Params) (string, error) {
	opts := n.options(p)
	return n.tool.Process(ctx, p.String(documentParam), "output.svg", func(_ *vpype.Workspace, in, out string) ([]string, error) {
		return vpype.Build(opts, in, out), nil
	})
}

func (n *ExtendedProcessor) Plan(p node.Params) (node.Plan, error) {
	opts := n.options(p)
	return node.Plan{
		Command: plannedCommand(n.tool.Bin, vpype.Build(opts, InputPlaceholder, OutputPlaceholder)),
		Stages:  vpype.Stages(opts),
	}, nil
}
