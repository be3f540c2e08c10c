package nodes

import (
	"strings"
	"testing"
)

func TestParamDef_CheckBounds(t *testing.T) {
	def := ParamDef{
		ID: "temperature", Label: "Temperature", Kind: ParamInteger,
		Min: ptr(0), Max: ptr(300),
	}

	cases := []struct {
		name    string
		value   any
		wantErr string
	}{
		{"nil uses default", nil, ""},
		{"in range", 200.0, ""},
		{"lower bound", 0.0, ""},
		{"upper bound", 300.0, ""},
		{"below min", -1.0, ">="},
		{"above max", 301.0, "<="},
		{"fractional", 200.5, "integer"},
		{"wrong type", "hot", "must be a"},
		{"int value accepted", 150, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := def.Check(tc.value)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Check(%v) = %v, want nil", tc.value, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Check(%v) = %v, want error containing %q", tc.value, err, tc.wantErr)
			}
		})
	}
}

func TestParamDef_CheckRequired(t *testing.T) {
	def := ParamDef{ID: "gcode", Label: "G-Code", Kind: ParamString, Required: true}
	if err := def.Check(nil); err == nil {
		t.Error("required parameter should reject nil")
	}
	if err := def.Check("G4 P0"); err != nil {
		t.Errorf("Check = %v, want nil", err)
	}
}

func TestParamDef_CheckEnum(t *testing.T) {
	def := ParamDef{
		ID: "axes", Label: "Axes", Kind: ParamEnum,
		Options: []string{"X", "Y", "XYZ"},
	}
	if err := def.Check("XYZ"); err != nil {
		t.Errorf("Check(XYZ) = %v, want nil", err)
	}
	if err := def.Check("W"); err == nil {
		t.Error("expected rejection of unknown enum option")
	}
	if err := def.Check(7.0); err == nil {
		t.Error("expected rejection of non-string enum value")
	}
}

func TestParams_DefaultFallback(t *testing.T) {
	def, ok := Builtin().Lookup("SetHotend")
	if !ok {
		t.Fatal("SetHotend not registered")
	}

	p := NewParams(def, nil)
	if got := p.Float("temperature"); got != 200 {
		t.Errorf("default temperature = %g, want 200", got)
	}
	if p.Bool("wait") {
		t.Error("default wait should be false")
	}

	p = NewParams(def, map[string]any{"temperature": 215.0, "wait": true})
	if got := p.Float("temperature"); got != 215 {
		t.Errorf("temperature = %g, want 215", got)
	}
	if !p.Bool("wait") {
		t.Error("wait should be true")
	}
}

func TestParams_TypedGetters(t *testing.T) {
	def, _ := Builtin().Lookup("LayerChange")
	p := NewParams(def, map[string]any{"layer": 3.0, "z": 0.6})
	if p.Int("layer") != 3 {
		t.Errorf("Int(layer) = %d, want 3", p.Int("layer"))
	}
	if p.Float("z") != 0.6 {
		t.Errorf("Float(z) = %g, want 0.6", p.Float("z"))
	}
	if p.Float("missing") != 0 {
		t.Error("unknown parameter should read as zero")
	}
}
