package schema

import (
	"fmt"
	"strings"
)

// Node is an immutable document tree node. Text nodes use the schema's text
// type and carry their literal in Text; all other nodes carry Content.
type Node struct {
	Type    *NodeType
	Attrs   map[string]any
	Content []*Node
	Marks   MarkSet
	Text    string
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool { return n.Type.IsText() }

// IsInline reports whether n lives in inline content.
func (n *Node) IsInline() bool { return n.Type.IsInline() }

// IsBlock reports whether n is a block node.
func (n *Node) IsBlock() bool { return n.Type.IsBlock() }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.Content) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.Content[i] }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Content) == 0 {
		return nil
	}
	return n.Content[0]
}

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node {
	if len(n.Content) == 0 {
		return nil
	}
	return n.Content[len(n.Content)-1]
}

// Attr returns a single attribute value.
func (n *Node) Attr(name string) any { return n.Attrs[name] }

// WithText returns a copy of a text node holding text instead.
func (n *Node) WithText(text string) *Node {
	cp := *n
	cp.Text = text
	return &cp
}

// WithMarks returns a copy of n carrying marks.
func (n *Node) WithMarks(marks MarkSet) *Node {
	cp := *n
	cp.Marks = marks
	return &cp
}

// SameMarkup reports whether other has the same type, attributes and marks.
func (n *Node) SameMarkup(other *Node) bool {
	if n.Type != other.Type || !n.Marks.Equal(other.Marks) {
		return false
	}
	return attrsEqual(n.Attrs, other.Attrs)
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	n.Descendants(func(d *Node, _ string) bool {
		if d.IsText() {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// Descendants calls fn for every node below n in document order, with a path
// such as "content/1/content/0". Returning false skips the node's children.
func (n *Node) Descendants(fn func(node *Node, path string) bool) {
	n.descend("", fn)
}

func (n *Node) descend(prefix string, fn func(*Node, string) bool) {
	for i, child := range n.Content {
		path := fmt.Sprintf("%scontent/%d", prefix, i)
		if fn(child, path) {
			child.descend(path+"/", fn)
		}
	}
}

// Check validates n and its descendants against the schema.
func (n *Node) Check() error {
	return n.check("")
}

func (n *Node) check(path string) error {
	if err := n.CheckSelf(); err != nil {
		if path == "" {
			return err
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	prefix := path
	if prefix != "" {
		prefix += "/"
	}
	for i, child := range n.Content {
		if err := child.check(fmt.Sprintf("%scontent/%d", prefix, i)); err != nil {
			return err
		}
	}
	return nil
}

// CheckSelf validates only n: attributes, text and direct children.
func (n *Node) CheckSelf() error {
	if n.IsText() {
		if n.Text == "" {
			return ErrEmptyText
		}
		return nil
	}
	if _, err := n.Type.ComputeAttrs(n.Attrs); err != nil {
		return err
	}
	for name := range n.Attrs {
		if _, ok := n.Type.Spec.Attrs[name]; !ok {
			return &ValidationError{Key: n.Type.Name + "." + name, Reason: "unsupported attribute", Value: n.Attrs[name]}
		}
	}
	return n.Type.checkContent(n.Content)
}

func (n *Node) String() string {
	if n.IsText() {
		s := fmt.Sprintf("%q", n.Text)
		for i := len(n.Marks) - 1; i >= 0; i-- {
			s = n.Marks[i].Type.Name + "(" + s + ")"
		}
		return s
	}
	if len(n.Content) == 0 {
		return n.Type.Name
	}
	parts := make([]string, len(n.Content))
	for i, c := range n.Content {
		parts[i] = c.String()
	}
	return n.Type.Name + "(" + strings.Join(parts, ", ") + ")"
}
