package nodes

import (
	"context"

	"github.com/matzehuels/vpypenode/pkg/gcode"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/vpype"
)

const gcodeConfigName = "gcode.toml"

// GCodeGenerator converts a drawing to G-code with vpype-gcode's gwrite,
// using a profile generated from the pen and feed parameters.
type GCodeGenerator struct {
	tool *vpype.Tool
}

// NewGCodeGenerator creates the G-code generator.
func NewGCodeGenerator(tool *vpype.Tool) *GCodeGenerator {
	return &GCodeGenerator{tool: tool}
}

func (n *GCodeGenerator) Info() node.Info {
	return node.Info{
		Name:        NameGCodeGenerator,
		DisplayName: "VPype G-Code Generator",
		Category:    node.DefaultCategory,
		ReturnName:  returnGCode,
		Description: "Generate pen-plotter G-code (requires the vpype-gcode plugin).",
	}
}

func (n *GCodeGenerator) Schema() node.Schema {
	return node.Schema{
		documentInput(),
		node.Float("pen_up", gcode.DefaultPenUp, -50, 50, 0.1).WithHelp("Z height while travelling (mm)"),
		node.Float("pen_down", gcode.DefaultPenDown, -50, 50, 0.1).WithHelp("Z height while drawing (mm)"),
		node.Float("feed_rate", gcode.DefaultFeedRate, 1, 20000, 10).WithHelp("drawing feed rate (mm/min)"),
		node.Bool("invert_y", true).WithHelp("put the origin at the bottom-left corner"),
		node.Bool("linemerge_enable", true),
		node.Float("linemerge_tolerance", 0.1, 0, 10, 0.01),
		node.Bool("linesort_enable", true),
	}
}

func (n *GCodeGenerator) profile(p node.Params) gcode.Profile {
	prof := gcode.DefaultProfile()
	prof.PenUp = p.Float("pen_up")
	prof.PenDown = p.Float("pen_down")
	prof.FeedRate = p.Float("feed_rate")
	prof.InvertY = p.Bool("invert_y")
	return prof
}

func (n *GCodeGenerator) options(p node.Params, config string) vpype.Options {
	prof := n.profile(p)
	return vpype.Options{
		Global:         []string{"-c", config},
		Merge:          p.Bool("linemerge_enable"),
		MergeTolerance: p.Float("linemerge_tolerance"),
		Sort:           p.Bool("linesort_enable"),
		Writer:         []string{"gwrite", "--profile", prof.ProfileName()},
	}
}

func (n *GCodeGenerator) Run(ctx context.Context, p node.Params) (string, error) {
	cfg, err := n.profile(p).Render()
	if err != nil {
		return "", err
	}
	return n.tool.Process(ctx, p.String(documentParam), "output.gcode", func(ws *vpype.Workspace, in, out string) ([]string, error) {
		path, err := ws.WriteFile(gcodeConfigName, cfg)
		if err != nil {
			return nil, err
		}
		return vpype.Build(n.options(p, path), in, out), nil
	})
}

func (n *GCodeGenerator) Plan(p node.Params) (node.Plan, error) {
	cfg, err := n.profile(p).Render()
	if err != nil {
		return node.Plan{}, err
	}
	opts := n.options(p, ConfigPlaceholder)
	return node.Plan{
		Command: plannedCommand(n.tool.Bin, vpype.Build(opts, InputPlaceholder, OutputPlaceholder)),
		Stages:  vpype.Stages(opts),
		Config:  string(cfg),
	}, nil
}
