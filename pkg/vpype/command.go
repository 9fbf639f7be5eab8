package vpype

import (
	"strconv"
)

// Layout alignment values accepted by `vpype layout`.
const (
	AlignCenter = "center"
	AlignLeft   = "left"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignBottom = "bottom"
)

// Options selects the vpype pipeline stages and their settings.
//
// The zero value enables nothing: Build then yields `read <in> write <out>`.
// Stages with an implicit enable flag (FilterMinLength > 0, MultipassCount > 1,
// Rotate != 0, Skew != 0, Scale != 1) need no separate bool. A zero scale
// factor means "unset" and counts as 1.
type Options struct {
	// Global flags placed before the first verb, e.g. {"-c", "gcode.toml"}.
	Global []string
	// ReadAttr splits layers by an SVG attribute (`read --attr <attr>`).
	ReadAttr string

	Merge          bool
	MergeTolerance float64 // mm

	Simplify          bool
	SimplifyTolerance float64 // mm

	Reloop          bool
	ReloopTolerance float64 // mm

	Squiggles          bool
	SquigglesAmplitude float64 // mm
	SquigglesPeriod    float64 // mm

	FilterMinLength float64 // mm

	Occult             bool
	OccultIgnoreLayers bool
	OccultAcrossLayers bool
	OccultKeepOcculted bool

	Sort       bool
	SortTwoOpt bool

	MultipassCount int

	Rotate float64 // degrees
	SkewX  float64 // degrees
	SkewY  float64 // degrees
	ScaleX float64
	ScaleY float64

	Layout             bool
	LayoutFitToMargins bool
	LayoutMargin       float64 // mm
	LayoutWidth        float64 // mm
	LayoutHeight       float64 // mm
	LayoutAlign        string
	LayoutVAlign       string

	// Writer replaces the final `write` verb; the output path is appended.
	// Example: {"gwrite", "--profile", "plotter"}.
	Writer []string
}

// stage is one (predicate, token producer) pair of the pipeline table.
type stage struct {
	name    string
	enabled func(o *Options) bool
	tokens  func(o *Options) []string
}

// stages is the fixed pipeline order. The order mirrors how vpype should
// process geometry and is not configurable.
var stages = []stage{
	{
		name:    "linemerge",
		enabled: func(o *Options) bool { return o.Merge },
		tokens: func(o *Options) []string {
			return []string{"linemerge", "--tolerance", mm(o.MergeTolerance)}
		},
	},
	{
		name:    "linesimplify",
		enabled: func(o *Options) bool { return o.Simplify },
		tokens: func(o *Options) []string {
			return []string{"linesimplify", "--tolerance", mm(o.SimplifyTolerance)}
		},
	},
	{
		name:    "reloop",
		enabled: func(o *Options) bool { return o.Reloop },
		tokens: func(o *Options) []string {
			return []string{"reloop", "--tolerance", mm(o.ReloopTolerance)}
		},
	},
	{
		name:    "squiggles",
		enabled: func(o *Options) bool { return o.Squiggles },
		tokens: func(o *Options) []string {
			return []string{"squiggles", "--amplitude", mm(o.SquigglesAmplitude), "--period", mm(o.SquigglesPeriod)}
		},
	},
	{
		name:    "filter",
		enabled: func(o *Options) bool { return o.FilterMinLength > 0 },
		tokens: func(o *Options) []string {
			return []string{"filter", "--min-length", mm(o.FilterMinLength)}
		},
	},
	{
		name:    "occult",
		enabled: func(o *Options) bool { return o.Occult },
		tokens: func(o *Options) []string {
			t := []string{"occult"}
			if o.OccultIgnoreLayers {
				t = append(t, "-i")
			}
			if o.OccultAcrossLayers {
				t = append(t, "-a")
			}
			if o.OccultKeepOcculted {
				t = append(t, "-k")
			}
			return t
		},
	},
	{
		name:    "linesort",
		enabled: func(o *Options) bool { return o.Sort },
		tokens: func(o *Options) []string {
			if o.SortTwoOpt {
				return []string{"linesort", "--two-opt"}
			}
			return []string{"linesort"}
		},
	},
	{
		name:    "multipass",
		enabled: func(o *Options) bool { return o.MultipassCount > 1 },
		tokens: func(o *Options) []string {
			return []string{"multipass", "--count", strconv.Itoa(o.MultipassCount)}
		},
	},
	{
		name:    "rotate",
		enabled: func(o *Options) bool { return o.Rotate != 0 },
		tokens: func(o *Options) []string {
			return []string{"rotate", num(o.Rotate)}
		},
	},
	{
		name:    "skew",
		enabled: func(o *Options) bool { return o.SkewX != 0 || o.SkewY != 0 },
		tokens: func(o *Options) []string {
			return []string{"skew", num(o.SkewX), num(o.SkewY)}
		},
	},
	{
		name: "scale",
		enabled: func(o *Options) bool {
			x, y := o.scale()
			return x != 1 || y != 1
		},
		tokens: func(o *Options) []string {
			x, y := o.scale()
			if x == y {
				return []string{"scale", num(x)}
			}
			return []string{"scale", num(x), num(y)}
		},
	},
	{
		name:    "layout",
		enabled: func(o *Options) bool { return o.Layout },
		tokens: func(o *Options) []string {
			t := []string{"layout"}
			if o.LayoutFitToMargins {
				t = append(t, "--fit-to-margins", mm(o.LayoutMargin))
			}
			t = append(t,
				"--align", orDefault(o.LayoutAlign, AlignCenter),
				"--valign", orDefault(o.LayoutVAlign, AlignCenter),
				mm(o.LayoutWidth)+"x"+mm(o.LayoutHeight),
			)
			return t
		},
	},
}

// Build assembles the vpype argument list (without the executable) that
// reads in, runs every enabled stage in fixed order and writes out.
// It performs no I/O and does not re-validate option bounds.
func Build(o Options, in, out string) []string {
	args := append([]string{}, o.Global...)

	args = append(args, "read")
	if o.ReadAttr != "" {
		args = append(args, "--attr", o.ReadAttr)
	}
	args = append(args, in)

	for _, s := range stages {
		if s.enabled(&o) {
			args = append(args, s.tokens(&o)...)
		}
	}

	if len(o.Writer) > 0 {
		args = append(args, o.Writer...)
	} else {
		args = append(args, "write")
	}
	return append(args, out)
}

// Stages returns the names of the verbs Build would emit, in order.
func Stages(o Options) []string {
	names := []string{"read"}
	for _, s := range stages {
		if s.enabled(&o) {
			names = append(names, s.name)
		}
	}
	if len(o.Writer) > 0 {
		return append(names, o.Writer[0])
	}
	return append(names, "write")
}

func (o *Options) scale() (x, y float64) {
	x, y = o.ScaleX, o.ScaleY
	if x == 0 {
		x = 1
	}
	if y == 0 {
		y = 1
	}
	return x, y
}

// mm formats a physical dimension in millimeters, e.g. "0.1mm".
func mm(v float64) string {
	return num(v) + "mm"
}

// num formats a float in its shortest round-trip form: 90, 0.05, -12.5.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
