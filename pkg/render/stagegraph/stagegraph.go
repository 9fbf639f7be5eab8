// Package stagegraph draws a node's planned stage chain as a diagram.
//
// [ToDOT] turns a [node.Plan] into Graphviz DOT: the input document, one
// box per stage in execution order and the output. [RenderSVG] lays the
// DOT out with the embedded Graphviz from go-graphviz, so no system
// Graphviz install is needed.
package stagegraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vpypenode/pkg/node"
)

// Options configures the diagram.
type Options struct {
	// Title is shown above the chain, typically the node's display name.
	Title string
	// Detailed adds each stage's arguments to its label.
	Detailed bool
}

// Stage is one box of the diagram.
type Stage struct {
	Name string
	Args []string
}

// Split groups plan.Command by stage. Tokens before the first stage
// (executable, global flags) are returned as head. Stages whose verb does
// not appear in the command get no arguments.
func Split(plan node.Plan) (head []string, stages []Stage) {
	stages = make([]Stage, len(plan.Stages))
	for i, name := range plan.Stages {
		stages[i].Name = name
	}

	cur := -1
	for _, tok := range plan.Command {
		if cur+1 < len(stages) && tok == stages[cur+1].Name {
			cur++
			continue
		}
		if cur < 0 {
			head = append(head, tok)
			continue
		}
		stages[cur].Args = append(stages[cur].Args, tok)
	}
	return head, stages
}

// ToDOT converts a plan to Graphviz DOT.
func ToDOT(plan node.Plan, opts Options) string {
	_, stages := Split(plan)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n")

	buf.WriteString("  \"input\" [shape=note, fillcolor=lightgrey];\n")
	for i, s := range stages {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", stageID(i), label(s, opts.Detailed))
	}
	buf.WriteString("  \"output\" [shape=note, fillcolor=lightgrey];\n\n")

	prev := "input"
	for i := range stages {
		fmt.Fprintf(&buf, "  %q -> %q;\n", prev, stageID(i))
		prev = stageID(i)
	}
	fmt.Fprintf(&buf, "  %q -> %q;\n", prev, "output")

	buf.WriteString("}\n")
	return buf.String()
}

func stageID(i int) string {
	return "s" + strconv.Itoa(i)
}

func label(s Stage, detailed bool) string {
	if !detailed || len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + "\n" + strings.Join(s.Args, " ")
}

// RenderSVG renders DOT to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based size attributes with a
// plain viewBox so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
