package schema

import (
	"errors"
	"testing"
)

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), "", false},
		{String(), 42, true},
		{String(), nil, true},
		{Int(), 3, false},
		{Int(), int64(3), false},
		{Int(), float64(3), false}, // whole number from JSON
		{Int(), 3.5, true},
		{Int(), "3", true},
		{Float(), 3.5, false},
		{Float(), 3, false},
		{Float(), "3.5", true},
		{Bool(), false, false},
		{Bool(), 0, true},
		{Any(), nil, false},
		{Any(), []int{1}, false},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestNullableType(t *testing.T) {
	typ := Nullable(String())

	if typ.Name() != "?string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "?string")
	}
	if err := typ.Validate(nil); err != nil {
		t.Errorf("Validate(nil) error = %v", err)
	}
	if err := typ.Validate("title"); err != nil {
		t.Errorf("Validate(title) error = %v", err)
	}
	if err := typ.Validate(7); err == nil {
		t.Error("Validate(7) should fail")
	}
}

func TestSliceType(t *testing.T) {
	classes := Slice(String())

	if err := classes.Validate([]any{"go", "js"}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := classes.Validate([]any{"go", 1}); err == nil {
		t.Error("Validate() should reject mixed slice")
	}
	if err := classes.Validate("go"); err == nil {
		t.Error("Validate() should reject non-slice")
	}
}

func TestCustomType(t *testing.T) {
	level := Custom("level", func(v any) error {
		i, ok := v.(int)
		if !ok || i < 1 || i > 6 {
			return errors.New("level must be between 1 and 6")
		}
		return nil
	})

	if level.Name() != "level" {
		t.Errorf("Name() = %q, want %q", level.Name(), "level")
	}
	for _, v := range []any{1, 6} {
		if err := level.Validate(v); err != nil {
			t.Errorf("Validate(%v) error = %v", v, err)
		}
	}
	for _, v := range []any{0, 7, "1"} {
		if err := level.Validate(v); err == nil {
			t.Errorf("Validate(%v) should fail", v)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"int", false, "int"},
		{"float", false, "float"},
		{"bool", false, "bool"},
		{"any", false, "any"},
		{"", false, "any"},
		{"?string", false, "?string"},
		{"[string]", false, "[string]"},
		{"?[int]", false, "?[int]"},
		{"invalid", true, ""},
		{"?invalid", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize(Int(), float64(3)); got != 3 {
		t.Errorf("normalize(int, 3.0) = %#v, want int 3", got)
	}
	if got := normalize(Int(), 2.7); got != 2.7 {
		t.Errorf("normalize(int, 2.7) = %#v, want the float unchanged", got)
	}
	if err := Int().Validate(normalize(Int(), 2.7)); err == nil {
		t.Error("Validate(normalize(int, 2.7)) succeeded, want error")
	}
	if got := normalize(Nullable(Int()), nil); got != nil {
		t.Errorf("normalize(?int, nil) = %#v, want nil", got)
	}
	if got := normalize(String(), "x"); got != "x" {
		t.Errorf("normalize(string, x) = %#v", got)
	}
}
