package schema

import (
	"fmt"
	"io"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// AttrSpec declares one attribute of a node or mark type.
type AttrSpec struct {
	Type       Type
	Default    any
	HasDefault bool
}

// Required reports whether the attribute must be supplied by the caller.
func (a AttrSpec) Required() bool { return !a.HasDefault }

// NodeSpec describes a node type. Order of NodeSpecs in a Spec is significant:
// the first match wins whenever a group has to be filled.
type NodeSpec struct {
	Name     string
	Content  string
	Marks    *string
	Group    string
	Inline   bool
	Atom     bool
	Code     bool
	Defining bool
	Attrs    map[string]AttrSpec
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Name      string
	Group     string
	Inclusive bool
	Attrs     map[string]AttrSpec
}

// Spec is a complete schema definition.
type Spec struct {
	Top   string
	Nodes []NodeSpec
	Marks []MarkSpec
}

// rawSpec mirrors the YAML layout. Attribute maps stay untyped so that an explicit
// `default: null` can be told apart from a missing default.
type rawSpec struct {
	Top   string    `mapstructure:"top"`
	Nodes []rawNode `mapstructure:"nodes"`
	Marks []rawMark `mapstructure:"marks"`
}

type rawNode struct {
	Name     string                    `mapstructure:"name"`
	Content  string                    `mapstructure:"content"`
	Marks    *string                   `mapstructure:"marks"`
	Group    string                    `mapstructure:"group"`
	Inline   bool                      `mapstructure:"inline"`
	Atom     bool                      `mapstructure:"atom"`
	Code     bool                      `mapstructure:"code"`
	Defining bool                      `mapstructure:"defining"`
	Attrs    map[string]map[string]any `mapstructure:"attrs"`
}

type rawMark struct {
	Name      string                    `mapstructure:"name"`
	Group     string                    `mapstructure:"group"`
	Inclusive *bool                     `mapstructure:"inclusive"`
	Attrs     map[string]map[string]any `mapstructure:"attrs"`
}

// LoadSpec reads a schema definition from YAML.
//
//	top: doc
//	nodes:
//	  - name: doc
//	    content: block+
//	  - name: heading
//	    content: inline*
//	    group: block
//	    attrs:
//	      level: {type: int, default: 1}
//	marks:
//	  - name: link
//	    attrs:
//	      href: {type: string}
func LoadSpec(r io.Reader) (Spec, error) {
	var generic map[string]any
	if err := yaml.NewDecoder(r).Decode(&generic); err != nil {
		return Spec{}, fmt.Errorf("%w: yaml: %v", ErrInvalidSpec, err)
	}

	var raw rawSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return Spec{}, err
	}
	if err := decoder.Decode(generic); err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	spec := Spec{Top: raw.Top}
	for _, n := range raw.Nodes {
		attrs, err := parseAttrs(n.Name, n.Attrs)
		if err != nil {
			return Spec{}, err
		}
		spec.Nodes = append(spec.Nodes, NodeSpec{
			Name:     n.Name,
			Content:  n.Content,
			Marks:    n.Marks,
			Group:    n.Group,
			Inline:   n.Inline,
			Atom:     n.Atom,
			Code:     n.Code,
			Defining: n.Defining,
			Attrs:    attrs,
		})
	}
	for _, m := range raw.Marks {
		attrs, err := parseAttrs(m.Name, m.Attrs)
		if err != nil {
			return Spec{}, err
		}
		inclusive := true
		if m.Inclusive != nil {
			inclusive = *m.Inclusive
		}
		spec.Marks = append(spec.Marks, MarkSpec{
			Name:      m.Name,
			Group:     m.Group,
			Inclusive: inclusive,
			Attrs:     attrs,
		})
	}
	return spec, nil
}

func parseAttrs(owner string, raw map[string]map[string]any) (map[string]AttrSpec, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	attrs := make(map[string]AttrSpec, len(raw))
	for name, def := range raw {
		typeName, _ := def["type"].(string)
		typ, err := ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidSpec, owner, name, err)
		}
		spec := AttrSpec{Type: typ}
		if value, ok := def["default"]; ok {
			spec.HasDefault = true
			spec.Default = normalize(typ, value)
			if err := typ.Validate(spec.Default); err != nil {
				return nil, fmt.Errorf("%w: %s.%s default: %v", ErrInvalidSpec, owner, name, err)
			}
		}
		attrs[name] = spec
	}
	return attrs, nil
}

func sortedAttrNames(attrs map[string]AttrSpec) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// computeAttrs fills defaults and validates the given values against specs.
// Values without a declaration are dropped.
func computeAttrs(owner string, specs map[string]AttrSpec, given map[string]any) (map[string]any, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	var errs []error
	out := make(map[string]any, len(specs))
	for _, name := range sortedAttrNames(specs) {
		spec := specs[name]
		value, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				errs = append(errs, &ValidationError{Key: owner + "." + name, Reason: "required"})
				continue
			}
			value = spec.Default
		}
		value = normalize(spec.Type, value)
		if err := spec.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: owner + "." + name, Reason: err.Error(), Value: value})
			continue
		}
		out[name] = value
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}
