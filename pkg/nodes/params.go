package nodes

import (
	"fmt"
	"math"
	"strings"
)

// ParamKind is the value type of a node parameter.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamInteger
	ParamBoolean
	ParamString
	ParamEnum
)

func (k ParamKind) String() string {
	switch k {
	case ParamNumber:
		return "number"
	case ParamInteger:
		return "integer"
	case ParamBoolean:
		return "boolean"
	case ParamString:
		return "string"
	case ParamEnum:
		return "enum"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// ParamDef declares a configurable parameter on a node type. Min and Max
// apply to number and integer parameters; Options to enum parameters.
type ParamDef struct {
	ID       string
	Label    string
	Kind     ParamKind
	Default  any
	Required bool
	Min      *float64
	Max      *float64
	Options  []string
}

// Check validates a raw parameter value against the definition. A nil
// value is acceptable unless the parameter is required; defaults are
// applied later, at conversion time.
func (d ParamDef) Check(value any) error {
	if value == nil {
		if d.Required {
			return fmt.Errorf("%s is required", d.Label)
		}
		return nil
	}

	switch d.Kind {
	case ParamNumber, ParamInteger:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s must be a %s", d.Label, d.Kind)
		}
		if d.Kind == ParamInteger && f != math.Trunc(f) {
			return fmt.Errorf("%s must be an integer", d.Label)
		}
		if d.Min != nil && f < *d.Min {
			return fmt.Errorf("%s must be >= %g", d.Label, *d.Min)
		}
		if d.Max != nil && f > *d.Max {
			return fmt.Errorf("%s must be <= %g", d.Label, *d.Max)
		}

	case ParamBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s must be a boolean", d.Label)
		}

	case ParamString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%s must be a string", d.Label)
		}

	case ParamEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", d.Label)
		}
		for _, opt := range d.Options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of: %s", d.Label, strings.Join(d.Options, ", "))
	}

	return nil
}

// toFloat normalizes the numeric types that survive JSON decoding.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Params is the resolved parameter set for one node instance. Getters
// fall back to the schema default when the instance supplies no value.
type Params struct {
	def    *Def
	values map[string]any
}

// NewParams binds instance parameter values to a node definition.
func NewParams(def *Def, values map[string]any) Params {
	return Params{def: def, values: values}
}

// lookup returns the effective value for a parameter: the instance value
// if present, otherwise the schema default.
func (p Params) lookup(id string) any {
	if v, ok := p.values[id]; ok && v != nil {
		return v
	}
	if pd, ok := p.def.Param(id); ok {
		return pd.Default
	}
	return nil
}

// Float returns a numeric parameter.
func (p Params) Float(id string) float64 {
	if f, ok := toFloat(p.lookup(id)); ok {
		return f
	}
	return 0
}

// Int returns an integer parameter.
func (p Params) Int(id string) int {
	return int(p.Float(id))
}

// Bool returns a boolean parameter.
func (p Params) Bool(id string) bool {
	b, _ := p.lookup(id).(bool)
	return b
}

// String returns a string or enum parameter.
func (p Params) String(id string) string {
	s, _ := p.lookup(id).(string)
	return s
}
