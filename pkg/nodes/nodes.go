package nodes

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/vpypenode/pkg/border"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/vpype"
)

// Class names under which the variants are registered.
const (
	NameProcessor         = "VPypeProcessor"
	NameExtendedProcessor = "VPypeExtendedProcessor"
	NameGCodeGenerator    = "VPypeGCodeGenerator"
	NameBorderRemover     = "VPypeBorderRemover"
)

// Placeholders used in planned commands instead of workspace paths.
const (
	InputPlaceholder  = "<input>"
	OutputPlaceholder = "<output>"
	ConfigPlaceholder = "<config>"
)

// Return names of the single string output.
const (
	returnSVG   = "svg_output"
	returnGCode = "gcode_output"
)

// documentParam is the name of the document input every variant takes.
const documentParam = "svg_input"

func documentInput() node.Param {
	return node.Document(documentParam).WithHelp("SVG content or path to an SVG file")
}

// Registry returns a registry holding all four variants.
func Registry(tool *vpype.Tool, remover *border.Remover) *node.Registry {
	r := node.NewRegistry()
	r.MustRegister(
		NewProcessor(tool),
		NewExtendedProcessor(tool),
		NewGCodeGenerator(tool),
		NewBorderRemover(remover),
	)
	return r
}

// Default builds the registry from executable names, as the CLI and server do.
// Empty names select PATH lookup and interpreter discovery.
func Default(vpypeBin, pythonBin string, logger *log.Logger) *node.Registry {
	return Registry(vpype.New(vpypeBin, logger), border.New(pythonBin, vpypeBin, logger))
}

func plannedCommand(bin string, args []string) []string {
	return append([]string{bin}, args...)
}
