package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/panmirror/pkg/schema"
)

// TreeRenderer prints a document as an indented tree.
type TreeRenderer struct {
	w   io.Writer
	out *termenv.Output
}

// TreeOption configures a TreeRenderer.
type TreeOption func(*TreeRenderer)

// WithProfile forces a color profile, e.g. termenv.Ascii for plain output.
func WithProfile(p termenv.Profile) TreeOption {
	return func(r *TreeRenderer) {
		r.out = termenv.NewOutput(r.w, termenv.WithProfile(p))
	}
}

// NewTreeRenderer creates a renderer writing to w. The color profile is
// detected from w unless WithProfile is given.
func NewTreeRenderer(w io.Writer, opts ...TreeOption) *TreeRenderer {
	r := &TreeRenderer{w: w, out: termenv.NewOutput(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes root and all of its descendants.
//
//	doc
//	└── paragraph
//	    ├── "plain"
//	    └── "bold" [strong]
func (r *TreeRenderer) Render(root *schema.Node) error {
	if _, err := fmt.Fprintln(r.w, r.label(root)); err != nil {
		return err
	}
	return r.children(root, "")
}

func (r *TreeRenderer) children(n *schema.Node, indent string) error {
	for i, child := range n.Content {
		branch, next := "├── ", "│   "
		if i == len(n.Content)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintln(r.w, r.faint(indent+branch)+r.label(child)); err != nil {
			return err
		}
		if err := r.children(child, indent+next); err != nil {
			return err
		}
	}
	return nil
}

func (r *TreeRenderer) label(n *schema.Node) string {
	var b strings.Builder
	if n.IsText() {
		b.WriteString(r.out.String(fmt.Sprintf("%q", n.Text)).Foreground(r.out.Color("#34d399")).String())
	} else {
		b.WriteString(r.out.String(n.Type.Name).Foreground(r.out.Color("#818cf8")).Bold().String())
	}
	if attrs := formatAttrs(n.Attrs); attrs != "" {
		b.WriteString(" ")
		b.WriteString(r.faint(attrs))
	}
	if len(n.Marks) > 0 {
		names := make([]string, len(n.Marks))
		for i, m := range n.Marks {
			names[i] = m.String()
		}
		b.WriteString(" ")
		b.WriteString(r.out.String("[" + strings.Join(names, ", ") + "]").Foreground(r.out.Color("#f472b6")).String())
	}
	return b.String()
}

func (r *TreeRenderer) faint(s string) string {
	return r.out.String(s).Faint().String()
}

func formatAttrs(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		v := attrs[name]
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%s: %q", name, s)
		} else if v == nil {
			parts[i] = name + ": null"
		} else {
			parts[i] = fmt.Sprintf("%s: %v", name, v)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
