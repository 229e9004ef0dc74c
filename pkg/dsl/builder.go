package dsl

import (
	"github.com/aretw0/panmirror/pkg/pandoc"
	"github.com/goccy/go-json"
)

// Builder assembles a pandoc document block by block.
type Builder struct {
	blocks []pandoc.Token
}

// New creates an empty document builder.
func New() *Builder {
	return &Builder{}
}

// Add appends arbitrary block tokens.
func (b *Builder) Add(blocks ...pandoc.Token) *Builder {
	b.blocks = append(b.blocks, blocks...)
	return b
}

// Heading appends a Header of the given level.
func (b *Builder) Heading(level int, inlines ...pandoc.Token) *Builder {
	return b.Add(Header(level, inlines...))
}

// Para appends a paragraph.
func (b *Builder) Para(inlines ...pandoc.Token) *Builder {
	return b.Add(Para(inlines...))
}

// Text appends a paragraph made of the words of s.
func (b *Builder) Text(s string) *Builder {
	return b.Add(Para(Words(s)...))
}

// Code appends a fenced code block.
func (b *Builder) Code(text string, classes ...string) *Builder {
	return b.Add(CodeBlock(text, classes...))
}

// Rule appends a horizontal rule.
func (b *Builder) Rule() *Builder {
	return b.Add(&pandoc.HorizontalRule{})
}

// Quote appends a block quote whose content is built by fn.
func (b *Builder) Quote(fn func(*Builder)) *Builder {
	inner := New()
	fn(inner)
	return b.Add(&pandoc.BlockQuote{Blocks: inner.blocks})
}

// Bullets appends a bullet list.
func (b *Builder) Bullets(items ...[]pandoc.Token) *Builder {
	return b.Add(BulletList(items...))
}

// Ordered appends an ordered list starting at start.
func (b *Builder) Ordered(start int, items ...[]pandoc.Token) *Builder {
	return b.Add(OrderedList(start, items...))
}

// Build returns the document.
func (b *Builder) Build() *pandoc.Document {
	return &pandoc.Document{APIVersion: pandoc.APIVersion, Blocks: append([]pandoc.Token(nil), b.blocks...)}
}

// JSON encodes the document in pandoc's wire format.
func (b *Builder) JSON() ([]byte, error) {
	return json.Marshal(b.Build())
}
