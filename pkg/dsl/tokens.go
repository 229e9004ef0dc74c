package dsl

import (
	"strings"

	"github.com/aretw0/panmirror/pkg/pandoc"
)

// Header builds a Header block.
func Header(level int, inlines ...pandoc.Token) *pandoc.Header {
	return &pandoc.Header{Level: level, Inlines: inlines}
}

// Para builds a Para block.
func Para(inlines ...pandoc.Token) *pandoc.Para {
	return &pandoc.Para{Inlines: inlines}
}

// Plain builds a Plain block, as found in tight list items.
func Plain(inlines ...pandoc.Token) *pandoc.Plain {
	return &pandoc.Plain{Inlines: inlines}
}

// CodeBlock builds a CodeBlock with the given classes.
func CodeBlock(text string, classes ...string) *pandoc.CodeBlock {
	return &pandoc.CodeBlock{Attr: pandoc.Attr{Classes: classes}, Text: text}
}

// Item groups block tokens into one list item.
func Item(blocks ...pandoc.Token) []pandoc.Token {
	return blocks
}

// BulletList builds a BulletList block.
func BulletList(items ...[]pandoc.Token) *pandoc.BulletList {
	return &pandoc.BulletList{Blocks: items}
}

// OrderedList builds an OrderedList with decimal numbering.
func OrderedList(start int, items ...[]pandoc.Token) *pandoc.OrderedList {
	la := pandoc.DefaultListAttributes
	la.Start = start
	return &pandoc.OrderedList{ListAttributes: la, Blocks: items}
}

// Str builds a Str inline.
func Str(s string) *pandoc.Str { return &pandoc.Str{Text: s} }

// Space builds a Space inline.
func Space() *pandoc.Space { return &pandoc.Space{} }

// SoftBreak builds a SoftBreak inline.
func SoftBreak() *pandoc.SoftBreak { return &pandoc.SoftBreak{} }

// LineBreak builds a LineBreak inline.
func LineBreak() *pandoc.LineBreak { return &pandoc.LineBreak{} }

// Words splits s on single spaces into Str and Space tokens, the way pandoc
// tokenizes running text.
func Words(s string) []pandoc.Token {
	var out []pandoc.Token
	for i, w := range strings.Split(s, " ") {
		if i > 0 {
			out = append(out, Space())
		}
		if w != "" {
			out = append(out, Str(w))
		}
	}
	return out
}

// Emph builds an Emph inline.
func Emph(inlines ...pandoc.Token) *pandoc.Emph { return &pandoc.Emph{Inlines: inlines} }

// Strong builds a Strong inline.
func Strong(inlines ...pandoc.Token) *pandoc.Strong { return &pandoc.Strong{Inlines: inlines} }

// Link builds a Link inline.
func Link(url, title string, inlines ...pandoc.Token) *pandoc.Link {
	return &pandoc.Link{Inlines: inlines, Target: pandoc.Target{URL: url, Title: title}}
}

// Image builds an Image inline with alt text tokens.
func Image(url, title string, alt ...pandoc.Token) *pandoc.Image {
	return &pandoc.Image{Alt: alt, Target: pandoc.Target{URL: url, Title: title}}
}

// Code builds an inline Code span.
func Code(text string) *pandoc.Code { return &pandoc.Code{Text: text} }
