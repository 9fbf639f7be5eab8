// Package gcode generates the vpype-gcode configuration that drives `gwrite`.
//
// The generated file holds one `[gwrite.<name>]` profile: a few scalar
// settings and a set of multi-line text templates. The templates contain
// placeholders such as {x:.4f} and {layer_id} that vpype-gcode expands per
// segment when it emits G-code. This package never interprets them; it only
// fills in the pen heights and feed rate and keeps every placeholder
// byte-for-byte.
package gcode

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultProfileName is the profile key used in the generated config.
const DefaultProfileName = "vpypenode"

// Defaults for a generic Z-axis pen plotter, in millimeters and mm/min.
const (
	DefaultPenUp    = 5.0
	DefaultPenDown  = 0.0
	DefaultFeedRate = 1000.0
)

// Per-segment motion templates. Placeholders are expanded by vpype-gcode.
const (
	moveTo     = "G0 X{x:.4f} Y{y:.4f}\n"
	drawTo     = "G1 X{x:.4f} Y{y:.4f}\n"
	layerStart = "(Layer {layer_id})\n"
)

// Profile holds the settings the adapter controls.
type Profile struct {
	Name     string
	PenUp    float64 // Z height while travelling
	PenDown  float64 // Z height while drawing
	FeedRate float64 // drawing feed in mm/min
	InvertY  bool    // flip Y so the origin sits at the bottom-left
}

// DefaultProfile returns the profile with the package defaults.
func DefaultProfile() Profile {
	return Profile{
		Name:     DefaultProfileName,
		PenUp:    DefaultPenUp,
		PenDown:  DefaultPenDown,
		FeedRate: DefaultFeedRate,
		InvertY:  true,
	}
}

// Section is the serialized form of one gwrite profile.
type Section struct {
	Info          string `toml:"info"`
	Unit          string `toml:"unit"`
	InvertY       bool   `toml:"invert_y"`
	DocumentStart string `toml:"document_start"`
	DocumentEnd   string `toml:"document_end"`
	LayerStart    string `toml:"layer_start"`
	LineStart     string `toml:"line_start"`
	SegmentFirst  string `toml:"segment_first"`
	Segment       string `toml:"segment"`
	SegmentLast   string `toml:"segment_last"`
}

// Config is the whole generated document.
type Config struct {
	GWrite map[string]Section `toml:"gwrite"`
}

// Section builds the gwrite profile for p.
func (p Profile) Section() Section {
	penUp := "G0 Z" + num(p.PenUp) + "\n"
	penDown := "G1 Z" + num(p.PenDown) + " F" + num(p.FeedRate) + "\n"

	return Section{
		Info:          fmt.Sprintf("vpypenode pen plotter (pen up %smm, pen down %smm)", num(p.PenUp), num(p.PenDown)),
		Unit:          "mm",
		InvertY:       p.InvertY,
		DocumentStart: "G21\nG90\n" + penUp,
		DocumentEnd:   penUp + "G0 X0 Y0\nM2\n",
		LayerStart:    layerStart,
		LineStart:     "",
		SegmentFirst:  moveTo + penDown,
		Segment:       drawTo,
		SegmentLast:   drawTo + penUp,
	}
}

// ProfileName returns the key under which Render stores the profile.
func (p Profile) ProfileName() string {
	if p.Name == "" {
		return DefaultProfileName
	}
	return p.Name
}

// Render serializes the profile as a vpype TOML config file.
func (p Profile) Render() ([]byte, error) {
	cfg := Config{GWrite: map[string]Section{p.ProfileName(): p.Section()}}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode gcode config: %w", err)
	}
	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
