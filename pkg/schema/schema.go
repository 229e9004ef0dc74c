package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed basic.yaml
var basicYAML []byte

// Schema is a compiled registry of node and mark types.
// A Schema is immutable after New returns and safe for concurrent use.
type Schema struct {
	Spec Spec

	nodes      []*NodeType
	nodeByName map[string]*NodeType
	marks      []*MarkType
	markByName map[string]*MarkType
	top        *NodeType
	text       *NodeType
}

// NodeType is a compiled node definition bound to its schema.
type NodeType struct {
	Name   string
	Spec   NodeSpec
	Schema *Schema

	groups       []string
	contentMatch *ContentMatch
	markSet      []*MarkType // nil allows every mark
	allMarks     bool
}

// MarkType is a compiled mark definition bound to its schema.
type MarkType struct {
	Name   string
	Spec   MarkSpec
	Schema *Schema
	rank   int
}

// New compiles a schema definition.
func New(spec Spec) (*Schema, error) {
	s := &Schema{
		Spec:       spec,
		nodeByName: make(map[string]*NodeType, len(spec.Nodes)),
		markByName: make(map[string]*MarkType, len(spec.Marks)),
	}

	for _, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, fmt.Errorf("%w: node type without name", ErrInvalidSpec)
		}
		if _, dup := s.nodeByName[ns.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate node type %q", ErrInvalidSpec, ns.Name)
		}
		t := &NodeType{Name: ns.Name, Spec: ns, Schema: s, groups: strings.Fields(ns.Group)}
		s.nodes = append(s.nodes, t)
		s.nodeByName[ns.Name] = t
	}
	for i, ms := range spec.Marks {
		if _, dup := s.markByName[ms.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate mark type %q", ErrInvalidSpec, ms.Name)
		}
		m := &MarkType{Name: ms.Name, Spec: ms, Schema: s, rank: i}
		s.marks = append(s.marks, m)
		s.markByName[ms.Name] = m
	}

	top := spec.Top
	if top == "" {
		top = "doc"
	}
	var ok bool
	if s.top, ok = s.nodeByName[top]; !ok {
		return nil, fmt.Errorf("%w: schema is missing its top node type %q", ErrInvalidSpec, top)
	}
	if s.text, ok = s.nodeByName["text"]; !ok {
		return nil, fmt.Errorf("%w: every schema needs a 'text' type", ErrInvalidSpec)
	}
	if len(s.text.Spec.Attrs) > 0 {
		return nil, fmt.Errorf("%w: the text node type should not have attributes", ErrInvalidSpec)
	}

	for _, t := range s.nodes {
		match, err := parseContentMatch(t.Spec.Content, s)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", t.Name, err)
		}
		t.contentMatch = match
	}
	for _, t := range s.nodes {
		if err := t.resolveMarks(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var (
	basicOnce   sync.Once
	basicSchema *Schema
	basicErr    error
)

// Basic returns the built-in schema modeled on the CommonMark document structure.
func Basic() *Schema {
	basicOnce.Do(func() {
		var spec Spec
		spec, basicErr = LoadSpec(bytes.NewReader(basicYAML))
		if basicErr == nil {
			basicSchema, basicErr = New(spec)
		}
	})
	if basicErr != nil {
		panic(fmt.Sprintf("schema: embedded basic schema is invalid: %v", basicErr))
	}
	return basicSchema
}

// NodeType looks up a node type by name.
func (s *Schema) NodeType(name string) (*NodeType, error) {
	t, ok := s.nodeByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
	}
	return t, nil
}

// MarkType looks up a mark type by name.
func (s *Schema) MarkType(name string) (*MarkType, error) {
	m, ok := s.markByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMarkType, name)
	}
	return m, nil
}

// Top returns the document root type.
func (s *Schema) Top() *NodeType { return s.top }

// NodeTypes returns the node types in definition order.
func (s *Schema) NodeTypes() []*NodeType { return append([]*NodeType(nil), s.nodes...) }

// MarkTypes returns the mark types in definition order.
func (s *Schema) MarkTypes() []*MarkType { return append([]*MarkType(nil), s.marks...) }

// Text creates a text node. Empty text is rejected.
func (s *Schema) Text(text string, marks MarkSet) (*Node, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	return &Node{Type: s.text, Text: text, Marks: marks}, nil
}

// EmptyDoc returns the smallest valid document.
func (s *Schema) EmptyDoc() (*Node, error) {
	return s.top.CreateAndFill(nil, nil, nil)
}

// --- NodeType ---

func (t *NodeType) resolveMarks() error {
	expr := t.Spec.Marks
	switch {
	case expr != nil && *expr == "_":
		t.allMarks = true
	case expr != nil && *expr != "":
		for _, name := range strings.Fields(*expr) {
			found := false
			if m, ok := t.Schema.markByName[name]; ok {
				t.markSet = append(t.markSet, m)
				found = true
			} else {
				for _, m := range t.Schema.marks {
					if m.InGroup(name) {
						t.markSet = append(t.markSet, m)
						found = true
					}
				}
			}
			if !found {
				return fmt.Errorf("%w: node %s: unknown mark type %q", ErrInvalidSpec, t.Name, name)
			}
		}
	case expr == nil && t.InlineContent():
		t.allMarks = true
	}
	return nil
}

// InGroup reports whether the type belongs to the named group.
func (t *NodeType) InGroup(group string) bool {
	for _, g := range t.groups {
		if g == group {
			return true
		}
	}
	return false
}

// IsText reports whether this is the schema's text type.
func (t *NodeType) IsText() bool { return t.Name == "text" }

// IsInline reports whether nodes of this type live in inline content.
func (t *NodeType) IsInline() bool { return t.Spec.Inline || t.IsText() }

// IsBlock is the inverse of IsInline.
func (t *NodeType) IsBlock() bool { return !t.IsInline() }

// IsLeaf reports whether the type accepts no content at all.
func (t *NodeType) IsLeaf() bool { return t.contentMatch == emptyMatch }

// InlineContent reports whether the type holds inline children.
func (t *NodeType) InlineContent() bool {
	return t.contentMatch != nil && t.contentMatch.InlineContent()
}

// IsTextblock reports whether the type is a block holding inline content.
func (t *NodeType) IsTextblock() bool { return t.IsBlock() && t.InlineContent() }

// ContentMatch returns the start state of the type's content automaton.
func (t *NodeType) ContentMatch() *ContentMatch { return t.contentMatch }

// HasRequiredAttrs reports whether some attribute has no default.
func (t *NodeType) HasRequiredAttrs() bool {
	for _, a := range t.Spec.Attrs {
		if a.Required() {
			return true
		}
	}
	return false
}

// AllowsMarkType reports whether children of this type may carry marks of type m.
func (t *NodeType) AllowsMarkType(m *MarkType) bool {
	if t.allMarks {
		return true
	}
	for _, allowed := range t.markSet {
		if allowed == m {
			return true
		}
	}
	return false
}

// ComputeAttrs fills defaults and validates attrs against the type definition.
func (t *NodeType) ComputeAttrs(attrs map[string]any) (map[string]any, error) {
	return computeAttrs(t.Name, t.Spec.Attrs, attrs)
}

// ValidContent reports whether content satisfies the content expression and mark rules.
func (t *NodeType) ValidContent(content []*Node) bool {
	return t.checkContent(content) == nil
}

func (t *NodeType) checkContent(content []*Node) error {
	match := t.contentMatch.MatchFragment(content)
	if match == nil || !match.ValidEnd {
		return fmt.Errorf("%w: %s cannot hold [%s]", ErrContentMismatch, t.Name, typeNames(content))
	}
	return t.checkMarks(content)
}

func (t *NodeType) checkMarks(content []*Node) error {
	for _, child := range content {
		for _, m := range child.Marks {
			if !t.AllowsMarkType(m.Type) {
				return fmt.Errorf("%w: %s does not allow mark %s", ErrContentMismatch, t.Name, m.Type.Name)
			}
		}
	}
	return nil
}

// Create builds a node and fails if content does not satisfy the type.
func (t *NodeType) Create(attrs map[string]any, content []*Node, marks MarkSet) (*Node, error) {
	if t.IsText() {
		return nil, fmt.Errorf("%w: use Schema.Text to create text nodes", ErrContentMismatch)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if err := t.checkContent(content); err != nil {
		return nil, err
	}
	return &Node{Type: t, Attrs: computed, Content: content, Marks: marks}, nil
}

// CreateAndFill builds a node, inserting the filler nodes its content expression
// requires before and after content. The returned error wraps ErrContentMismatch
// when no filling can make content valid.
func (t *NodeType) CreateAndFill(attrs map[string]any, content []*Node, marks MarkSet) (*Node, error) {
	if t.IsText() {
		return nil, fmt.Errorf("%w: use Schema.Text to create text nodes", ErrContentMismatch)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		before, ok := t.contentMatch.FillBefore(content, false)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot hold [%s]", ErrContentMismatch, t.Name, typeNames(content))
		}
		content = append(before, content...)
	}
	matched := t.contentMatch.MatchFragment(content)
	if matched == nil {
		return nil, fmt.Errorf("%w: %s cannot hold [%s]", ErrContentMismatch, t.Name, typeNames(content))
	}
	after, ok := matched.FillBefore(nil, true)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be completed after [%s]", ErrContentMismatch, t.Name, typeNames(content))
	}
	if len(after) > 0 {
		content = append(append([]*Node(nil), content...), after...)
	}
	if err := t.checkMarks(content); err != nil {
		return nil, err
	}
	return &Node{Type: t, Attrs: computed, Content: content, Marks: marks}, nil
}

func (t *NodeType) String() string { return t.Name }

func typeNames(nodes []*Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Type.Name
	}
	return strings.Join(names, ", ")
}

// --- MarkType ---

// InGroup reports whether the mark type belongs to the named group.
func (m *MarkType) InGroup(group string) bool {
	for _, g := range strings.Fields(m.Spec.Group) {
		if g == group {
			return true
		}
	}
	return false
}

// Create builds a mark value with computed attributes.
func (m *MarkType) Create(attrs map[string]any) (Mark, error) {
	computed, err := computeAttrs(m.Name, m.Spec.Attrs, attrs)
	if err != nil {
		return Mark{}, err
	}
	return Mark{Type: m, Attrs: computed}, nil
}

func (m *MarkType) String() string { return m.Name }
