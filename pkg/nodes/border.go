package nodes

import (
	"context"

	"github.com/matzehuels/vpypenode/pkg/border"
	"github.com/matzehuels/vpypenode/pkg/node"
)

// BorderRemover strips closed paths that frame the whole drawing.
type BorderRemover struct {
	remover *border.Remover
}

// NewBorderRemover creates the border remover.
func NewBorderRemover(r *border.Remover) *BorderRemover {
	return &BorderRemover{remover: r}
}

func (n *BorderRemover) Info() node.Info {
	return node.Info{
		Name:        NameBorderRemover,
		DisplayName: "VPype Border Remover",
		Category:    node.DefaultCategory,
		ReturnName:  returnSVG,
		Description: "Remove closed paths whose bounding box covers most of the page.",
	}
}

func (n *BorderRemover) Schema() node.Schema {
	return node.Schema{
		documentInput(),
		node.Float("threshold", border.DefaultThreshold, 0.1, 1, 0.01).
			WithHelp("fraction of the document area above which a closed path is a border"),
	}
}

func (n *BorderRemover) Run(ctx context.Context, p node.Params) (string, error) {
	svg, _, err := n.remover.Remove(ctx, p.String(documentParam), p.Float("threshold"))
	return svg, err
}

func (n *BorderRemover) Plan(p node.Params) (node.Plan, error) {
	args := border.Args("remove_border.py", InputPlaceholder, OutputPlaceholder, p.Float("threshold"))
	return node.Plan{
		Command: plannedCommand(n.remover.Interpreter(), args),
		Stages:  []string{"read_multilayer_svg", "remove_borders", "write_svg"},
	}, nil
}
