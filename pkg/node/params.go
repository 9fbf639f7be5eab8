package node

// Params holds resolved parameter values keyed by name.
//
// Values produced by [Schema.Resolve] are float64, int, bool or string
// according to the declared type. The getters return the zero value for
// absent or mistyped entries; adapters receive resolved params only.
type Params map[string]any

// Float returns a float parameter. Integer values are widened.
func (p Params) Float(name string) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Int returns an integer parameter.
func (p Params) Int(name string) int {
	switch v := p[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns a boolean parameter.
func (p Params) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// String returns a string or choice parameter.
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}
