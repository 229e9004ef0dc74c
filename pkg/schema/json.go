package schema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

type nodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type markJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// MarshalJSON encodes the node in ProseMirror's JSON layout.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:    n.Type.Name,
		Attrs:   n.Attrs,
		Content: n.Content,
		Marks:   n.Marks,
		Text:    n.Text,
	})
}

// MarshalJSON encodes the mark as {"type", "attrs"}.
func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(markJSON{Type: m.Type.Name, Attrs: m.Attrs})
}

type rawNodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs"`
	Content []rawNodeJSON  `json:"content"`
	Marks   []markJSON     `json:"marks"`
	Text    *string        `json:"text"`
}

// NodeFromJSON decodes a node tree produced by MarshalJSON and checks it.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	n, err := s.decodeNode(data, true)
	if err != nil {
		return nil, err
	}
	if err := n.Check(); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseNodeJSON decodes a node tree without checking content, attributes or
// text. Only unknown node and mark types are rejected. Use Check, or walk the
// tree with CheckSelf, to find the problems.
func (s *Schema) ParseNodeJSON(data []byte) (*Node, error) {
	return s.decodeNode(data, false)
}

func (s *Schema) decodeNode(data []byte, strict bool) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw rawNodeJSON
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode node json: %w", err)
	}
	return s.nodeFromRaw(raw, strict)
}

func (s *Schema) nodeFromRaw(raw rawNodeJSON, strict bool) (*Node, error) {
	t, err := s.NodeType(raw.Type)
	if err != nil {
		return nil, err
	}
	var marks MarkSet
	for _, rm := range raw.Marks {
		mt, err := s.MarkType(rm.Type)
		if err != nil {
			return nil, err
		}
		m, err := mt.Create(rm.Attrs)
		if err != nil {
			if strict {
				return nil, err
			}
			m = Mark{Type: mt, Attrs: rm.Attrs}
		}
		marks = marks.AddToSet(m)
	}
	if t.IsText() {
		if strict {
			if raw.Text == nil {
				return nil, fmt.Errorf("%w: text node without text", ErrEmptyText)
			}
			return s.Text(*raw.Text, marks)
		}
		n := &Node{Type: t, Marks: marks}
		if raw.Text != nil {
			n.Text = *raw.Text
		}
		return n, nil
	}
	attrs, err := t.ComputeAttrs(raw.Attrs)
	if err != nil {
		if strict {
			return nil, err
		}
		attrs = raw.Attrs
	}
	content := make([]*Node, 0, len(raw.Content))
	for _, rc := range raw.Content {
		child, err := s.nodeFromRaw(rc, strict)
		if err != nil {
			return nil, err
		}
		content = append(content, child)
	}
	if len(content) == 0 {
		content = nil
	}
	return &Node{Type: t, Attrs: attrs, Content: content, Marks: marks}, nil
}

type attrSpecJSON struct {
	Type     string `json:"type"`
	Default  any    `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

type nodeSpecJSON struct {
	Name     string                  `json:"name"`
	Content  string                  `json:"content,omitempty"`
	Group    string                  `json:"group,omitempty"`
	Marks    *string                 `json:"marks,omitempty"`
	Inline   bool                    `json:"inline,omitempty"`
	Atom     bool                    `json:"atom,omitempty"`
	Code     bool                    `json:"code,omitempty"`
	Defining bool                    `json:"defining,omitempty"`
	Attrs    map[string]attrSpecJSON `json:"attrs,omitempty"`
}

type markSpecJSON struct {
	Name      string                  `json:"name"`
	Group     string                  `json:"group,omitempty"`
	Inclusive bool                    `json:"inclusive"`
	Attrs     map[string]attrSpecJSON `json:"attrs,omitempty"`
}

type schemaJSON struct {
	Top   string         `json:"top"`
	Nodes []nodeSpecJSON `json:"nodes"`
	Marks []markSpecJSON `json:"marks"`
}

func attrsJSON(attrs map[string]AttrSpec) map[string]attrSpecJSON {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]attrSpecJSON, len(attrs))
	for name, a := range attrs {
		out[name] = attrSpecJSON{Type: a.Type.Name(), Default: a.Default, Required: a.Required()}
	}
	return out
}

// MarshalJSON describes the schema's node and mark types in definition order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := schemaJSON{Top: s.top.Name, Nodes: []nodeSpecJSON{}, Marks: []markSpecJSON{}}
	for _, t := range s.nodes {
		out.Nodes = append(out.Nodes, nodeSpecJSON{
			Name:     t.Name,
			Content:  t.Spec.Content,
			Group:    t.Spec.Group,
			Marks:    t.Spec.Marks,
			Inline:   t.Spec.Inline,
			Atom:     t.Spec.Atom,
			Code:     t.Spec.Code,
			Defining: t.Spec.Defining,
			Attrs:    attrsJSON(t.Spec.Attrs),
		})
	}
	for _, m := range s.marks {
		out.Marks = append(out.Marks, markSpecJSON{
			Name:      m.Name,
			Group:     m.Spec.Group,
			Inclusive: m.Spec.Inclusive,
			Attrs:     attrsJSON(m.Spec.Attrs),
		})
	}
	return json.Marshal(out)
}
