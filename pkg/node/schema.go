package node

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/vpypenode/pkg/errors"
)

// Type is the value type of a parameter.
type Type string

// Parameter types understood by the host.
const (
	TypeFloat  Type = "FLOAT"
	TypeInt    Type = "INT"
	TypeBool   Type = "BOOLEAN"
	TypeString Type = "STRING"
	TypeChoice Type = "CHOICE"
)

// Param declares one entry of a node's input schema.
type Param struct {
	Name    string   `json:"name"`
	Type    Type     `json:"type"`
	Default any      `json:"default,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    float64  `json:"step,omitempty"`
	Choices []string `json:"choices,omitempty"`

	// Multiline and ForceInput are display hints for string inputs that
	// carry a whole document and are normally wired from another node.
	Multiline  bool   `json:"multiline,omitempty"`
	ForceInput bool   `json:"force_input,omitempty"`
	Display    string `json:"display,omitempty"`
	Help       string `json:"help,omitempty"`
}

// Required reports whether the parameter has no default and must be supplied.
func (p Param) Required() bool {
	return p.Default == nil
}

// Float declares a float parameter with bounds and step.
func Float(name string, def, min, max, step float64) Param {
	return Param{Name: name, Type: TypeFloat, Default: def, Min: &min, Max: &max, Step: step, Display: "number"}
}

// Int declares an integer parameter with bounds and step.
func Int(name string, def, min, max, step int) Param {
	lo, hi := float64(min), float64(max)
	return Param{Name: name, Type: TypeInt, Default: def, Min: &lo, Max: &hi, Step: float64(step), Display: "number"}
}

// Bool declares a boolean parameter.
func Bool(name string, def bool) Param {
	return Param{Name: name, Type: TypeBool, Default: def}
}

// Choice declares an enumerated string parameter; the first choice is the default.
func Choice(name string, choices ...string) Param {
	return Param{Name: name, Type: TypeChoice, Default: choices[0], Choices: choices}
}

// Document declares the required multiline document input of a node.
func Document(name string) Param {
	return Param{Name: name, Type: TypeString, Multiline: true, ForceInput: true}
}

// WithHelp returns a copy of p with a help text.
func (p Param) WithHelp(help string) Param {
	p.Help = help
	return p
}

// Schema is the ordered list of a node's parameters.
type Schema []Param

// Lookup returns the parameter with the given name.
func (s Schema) Lookup(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Names returns the parameter names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Defaults returns the declared defaults of every optional parameter.
func (s Schema) Defaults() Params {
	out := make(Params, len(s))
	for _, p := range s {
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	return out
}

// Resolve turns loosely typed raw values into Params.
//
// Missing optional parameters take their default, values are coerced to the
// declared type and checked against min/max/choices. Unknown names and
// missing required parameters are INVALID_PARAM errors.
func (s Schema) Resolve(raw map[string]any) (Params, error) {
	for name := range raw {
		if _, ok := s.Lookup(name); !ok {
			return nil, errors.New(errors.ErrCodeInvalidParam, "unknown parameter %q (known: %s)", name, strings.Join(s.Names(), ", "))
		}
	}

	out := make(Params, len(s))
	for _, p := range s {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required() {
				return nil, errors.New(errors.ErrCodeInvalidParam, "missing required parameter %q", p.Name)
			}
			out[p.Name] = p.Default
			continue
		}
		coerced, err := p.coerce(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParam, err, "parameter %q", p.Name)
		}
		if err := p.check(coerced); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParam, err, "parameter %q", p.Name)
		}
		out[p.Name] = coerced
	}
	return out, nil
}

func (p Param) coerce(v any) (any, error) {
	switch p.Type {
	case TypeFloat:
		return toFloat(v)
	case TypeInt:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if err := p.checkNumber(f); err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("%v is out of integer range", v)
		}
		return int(f), nil
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(b))
		}
		return nil, fmt.Errorf("cannot use %T as boolean", v)
	case TypeString, TypeChoice:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot use %T as string", v)
	}
	return nil, fmt.Errorf("unsupported parameter type %s", p.Type)
}

func (p Param) check(v any) error {
	switch p.Type {
	case TypeFloat:
		return p.checkNumber(v.(float64))
	case TypeChoice:
		s := v.(string)
		for _, c := range p.Choices {
			if c == s {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %s", s, strings.Join(p.Choices, ", "))
	}
	return nil
}

// checkNumber rejects non-finite values and enforces min/max. Integer
// params run it before the value is converted.
func (p Param) checkNumber(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%v is not a finite number", f)
	}
	if p.Min != nil && f < *p.Min {
		return fmt.Errorf("%v is below minimum %v", f, *p.Min)
	}
	if p.Max != nil && f > *p.Max {
		return fmt.Errorf("%v is above maximum %v", f, *p.Max)
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("cannot use %T as number", v)
}
