package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/pandoc"
)

// Kind selects the state transition a handler performs.
type Kind int

const (
	// KindText appends literal text to the open frame.
	KindText Kind = iota
	// KindMark wraps its children (or its literal text) in a mark.
	KindMark
	// KindBlock opens a frame, fills it and closes it.
	KindBlock
	// KindLeafNode appends a node without children.
	KindLeafNode
	// KindList opens a list frame and one item frame per item group.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMark:
		return "mark"
	case KindBlock:
		return "block"
	case KindLeafNode:
		return "leafNode"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Handler declares how one pandoc tag maps onto the document model.
// Type names a node type for blocks, leaves and lists, or a mark type for marks.
// Nil extraction functions fall back to the defaults: no attributes, the
// token's own children, the token's own item groups and no literal text.
type Handler struct {
	Kind     Kind
	Type     string
	ItemType string

	GetAttrs    func(pandoc.Token) map[string]any
	GetChildren func(pandoc.Token) []pandoc.Token
	GetItems    func(pandoc.Token) [][]pandoc.Token
	GetText     func(pandoc.Token) string
}

// Table maps every supported tag to its handler.
type Table map[pandoc.Tag]Handler

// Lookup returns the handler for tag.
func (t Table) Lookup(tag pandoc.Tag) (Handler, error) {
	h, ok := t[tag]
	if !ok {
		return Handler{}, &domain.UnknownTagError{Tag: tag.String()}
	}
	return h, nil
}

// Clone returns a copy that can be modified without affecting t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// DefaultTable returns the mapping from pandoc's CommonMark subset onto the
// basic schema.
func DefaultTable() Table {
	table := make(Table)
	for _, tag := range pandoc.Tags() {
		table[tag] = defaultHandler(tag)
	}
	return table
}

func defaultHandler(tag pandoc.Tag) Handler {
	switch tag {
	case pandoc.TagHeader:
		return Handler{Kind: KindBlock, Type: "heading", GetAttrs: func(tok pandoc.Token) map[string]any {
			return map[string]any{"level": tok.(*pandoc.Header).Level}
		}}
	case pandoc.TagPara, pandoc.TagPlain:
		return Handler{Kind: KindBlock, Type: "paragraph"}
	case pandoc.TagBlockQuote:
		return Handler{Kind: KindBlock, Type: "blockquote"}
	case pandoc.TagCodeBlock:
		return Handler{
			Kind: KindBlock,
			Type: "code_block",
			GetAttrs: func(tok pandoc.Token) map[string]any {
				return map[string]any{"params": strings.Join(tok.(*pandoc.CodeBlock).Attr.Classes, " ")}
			},
			GetText: func(tok pandoc.Token) string { return tok.(*pandoc.CodeBlock).Text },
		}
	case pandoc.TagHorizontalRule:
		return Handler{Kind: KindLeafNode, Type: "horizontal_rule"}
	case pandoc.TagLineBreak:
		return Handler{Kind: KindLeafNode, Type: "hard_break"}
	case pandoc.TagBulletList:
		return Handler{Kind: KindList, Type: "bullet_list", ItemType: "list_item"}
	case pandoc.TagOrderedList:
		return Handler{Kind: KindList, Type: "ordered_list", ItemType: "list_item", GetAttrs: func(tok pandoc.Token) map[string]any {
			return map[string]any{"order": tok.(*pandoc.OrderedList).ListAttributes.Start}
		}}
	case pandoc.TagImage:
		return Handler{Kind: KindLeafNode, Type: "image", GetAttrs: func(tok pandoc.Token) map[string]any {
			img := tok.(*pandoc.Image)
			return map[string]any{
				"src":   img.Target.URL,
				"title": orNil(img.Target.Title),
				"alt":   orNil(pandoc.PlainText(img.Alt)),
			}
		}}
	case pandoc.TagEmph:
		return Handler{Kind: KindMark, Type: "em"}
	case pandoc.TagStrong:
		return Handler{Kind: KindMark, Type: "strong"}
	case pandoc.TagLink:
		return Handler{Kind: KindMark, Type: "link", GetAttrs: func(tok pandoc.Token) map[string]any {
			link := tok.(*pandoc.Link)
			return map[string]any{"href": link.Target.URL, "title": orNil(link.Target.Title)}
		}}
	case pandoc.TagCode:
		return Handler{Kind: KindMark, Type: "code", GetText: func(tok pandoc.Token) string {
			return tok.(*pandoc.Code).Text
		}}
	case pandoc.TagStr:
		return Handler{Kind: KindText, GetText: func(tok pandoc.Token) string { return tok.(*pandoc.Str).Text }}
	case pandoc.TagSpace, pandoc.TagSoftBreak:
		return Handler{Kind: KindText, GetText: func(pandoc.Token) string { return " " }}
	}
	panic(fmt.Sprintf("runtime: no default handler for tag %s", tag))
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func childrenOf(h Handler, tok pandoc.Token) ([]pandoc.Token, error) {
	if h.GetChildren != nil {
		return h.GetChildren(tok), nil
	}
	c, ok := tok.(pandoc.Container)
	if !ok {
		return nil, &domain.MalformedTokenError{Tag: tok.Tag().String(), Path: tok.Path(), Expected: "token with children"}
	}
	return c.Children(), nil
}

func itemsOf(h Handler, tok pandoc.Token) ([][]pandoc.Token, error) {
	if h.GetItems != nil {
		return h.GetItems(tok), nil
	}
	l, ok := tok.(pandoc.ListContainer)
	if !ok {
		return nil, &domain.MalformedTokenError{Tag: tok.Tag().String(), Path: tok.Path(), Expected: "token with item groups"}
	}
	return l.Items(), nil
}

func attrsOf(h Handler, tok pandoc.Token) map[string]any {
	if h.GetAttrs == nil {
		return nil
	}
	return h.GetAttrs(tok)
}
