package vpype

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildAllDisabled(t *testing.T) {
	got := Build(Options{}, "in.svg", "out.svg")
	want := []string{"read", "in.svg", "write", "out.svg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build(zero) = %v, want %v", got, want)
	}

	// Explicitly neutral implicit flags stay disabled too.
	neutral := Options{MultipassCount: 1, ScaleX: 1, ScaleY: 1}
	if got := Build(neutral, "in.svg", "out.svg"); !reflect.DeepEqual(got, want) {
		t.Errorf("Build(neutral) = %v, want %v", got, want)
	}
}

func TestBuildScenario(t *testing.T) {
	o := Options{
		Merge: true, MergeTolerance: 0.1,
		Simplify: true, SimplifyTolerance: 0.05,
		Sort:   true,
		Rotate: 90,
		Layout: true, LayoutFitToMargins: true, LayoutMargin: 10,
		LayoutWidth: 210, LayoutHeight: 297,
	}
	got := Build(o, "<in>", "<out>")
	want := []string{
		"read", "<in>",
		"linemerge", "--tolerance", "0.1mm",
		"linesimplify", "--tolerance", "0.05mm",
		"linesort",
		"rotate", "90",
		"layout", "--fit-to-margins", "10mm", "--align", "center", "--valign", "center", "210mmx297mm",
		"write", "<out>",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildStageOrder(t *testing.T) {
	o := Options{
		Merge: true, MergeTolerance: 1,
		Simplify: true, SimplifyTolerance: 1,
		Reloop: true, ReloopTolerance: 1,
		Squiggles: true, SquigglesAmplitude: 0.5, SquigglesPeriod: 3,
		FilterMinLength: 2,
		Occult:          true,
		Sort:            true,
		MultipassCount:  2,
		Rotate:          45,
		SkewX:           10,
		ScaleX:          2, ScaleY: 2,
		Layout: true, LayoutWidth: 100, LayoutHeight: 100,
	}
	want := []string{
		"read", "linemerge", "linesimplify", "reloop", "squiggles", "filter", "occult",
		"linesort", "multipass", "rotate", "skew", "scale", "layout", "write",
	}
	if got := Stages(o); !reflect.DeepEqual(got, want) {
		t.Fatalf("Stages() = %v, want %v", got, want)
	}

	args := Build(o, "in", "out")
	last := -1
	for _, verb := range want {
		idx := indexOf(args, verb)
		if idx < 0 {
			t.Fatalf("verb %q missing from %v", verb, args)
		}
		if idx <= last {
			t.Errorf("verb %q out of order in %v", verb, args)
		}
		last = idx
	}
}

func TestBuildScale(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		tokens []string
	}{
		{"uniform", 2, 2, []string{"scale", "2"}},
		{"non uniform", 1.5, 0.5, []string{"scale", "1.5", "0.5"}},
		{"only y", 1, 3, []string{"scale", "1", "3"}},
		{"disabled", 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Build(Options{ScaleX: tt.x, ScaleY: tt.y}, "in", "out")
			idx := indexOf(args, "scale")
			if tt.tokens == nil {
				if idx >= 0 {
					t.Errorf("scale should be absent: %v", args)
				}
				return
			}
			if idx < 0 {
				t.Fatalf("scale missing: %v", args)
			}
			got := args[idx : idx+len(tt.tokens)]
			if !reflect.DeepEqual(got, tt.tokens) {
				t.Errorf("scale tokens = %v, want %v", got, tt.tokens)
			}
			if next := args[idx+len(tt.tokens)]; next != "write" {
				t.Errorf("unexpected token after scale: %q", next)
			}
		})
	}
}

func TestBuildUnits(t *testing.T) {
	o := Options{
		Merge: true, MergeTolerance: 0.1,
		Squiggles: true, SquigglesAmplitude: 0.5, SquigglesPeriod: 3,
		FilterMinLength: 1.25,
		MultipassCount:  3,
		Rotate:          -90,
		SkewX:           5, SkewY: -5,
		ScaleX: 2, ScaleY: 3,
		Layout: true, LayoutFitToMargins: true, LayoutMargin: 7.5, LayoutWidth: 210, LayoutHeight: 297,
	}
	args := Build(o, "in", "out")

	withUnit := map[string]bool{"0.1mm": true, "0.5mm": true, "3mm": true, "1.25mm": true, "7.5mm": true, "210mmx297mm": true}
	for v := range withUnit {
		if indexOf(args, v) < 0 {
			t.Errorf("expected %q in %v", v, args)
		}
	}

	unitless := []struct{ verb, first string }{
		{"multipass", "--count"},
		{"rotate", "-90"},
		{"skew", "5"},
		{"scale", "2"},
	}
	for _, u := range unitless {
		idx := indexOf(args, u.verb)
		if args[idx+1] != u.first {
			t.Errorf("%s: got %q, want %q", u.verb, args[idx+1], u.first)
		}
		for _, tok := range args[idx+1 : idx+3] {
			if strings.HasSuffix(tok, "mm") {
				t.Errorf("%s token %q must be unit-less", u.verb, tok)
			}
		}
	}
}

func TestBuildOptionalFlags(t *testing.T) {
	o := Options{
		ReadAttr:           "stroke",
		Occult:             true,
		OccultIgnoreLayers: true,
		OccultAcrossLayers: true,
		OccultKeepOcculted: true,
		Sort:               true,
		SortTwoOpt:         true,
		Layout:             true,
		LayoutAlign:        AlignLeft,
		LayoutVAlign:       AlignBottom,
		LayoutWidth:        100,
		LayoutHeight:       50,
	}
	got := strings.Join(Build(o, "in", "out"), " ")
	want := "read --attr stroke in occult -i -a -k linesort --two-opt layout --align left --valign bottom 100mmx50mm write out"
	if got != want {
		t.Errorf("Build() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildGlobalAndWriter(t *testing.T) {
	o := Options{
		Global: []string{"-c", "/tmp/ws/gcode.toml"},
		Sort:   true,
		Writer: []string{"gwrite", "--profile", "vpypenode"},
	}
	got := Build(o, "in.svg", "out.gcode")
	want := []string{"-c", "/tmp/ws/gcode.toml", "read", "in.svg", "linesort", "gwrite", "--profile", "vpypenode", "out.gcode"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
	if s := Stages(o); s[len(s)-1] != "gwrite" {
		t.Errorf("Stages() last = %q, want gwrite", s[len(s)-1])
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		90:     "90",
		0.05:   "0.05",
		-12.5:  "-12.5",
		210:    "210",
		0.0001: "0.0001",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
