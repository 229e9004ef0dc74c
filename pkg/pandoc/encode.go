package pandoc

import (
	"fmt"

	"github.com/goccy/go-json"
)

// APIVersion is the pandoc-types version written by Encode.
var APIVersion = []int{1, 23, 1}

type encodedToken struct {
	T string `json:"t"`
	C any    `json:"c,omitempty"`
}

type encodedDocument struct {
	APIVersion []int          `json:"pandoc-api-version"`
	Meta       map[string]any `json:"meta"`
	Blocks     []any          `json:"blocks"`
}

// MarshalJSON writes the document in pandoc's JSON format.
func (d *Document) MarshalJSON() ([]byte, error) {
	blocks, err := encodeTokens(d.Blocks)
	if err != nil {
		return nil, err
	}
	version := d.APIVersion
	if len(version) == 0 {
		version = APIVersion
	}
	meta := d.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(encodedDocument{APIVersion: version, Meta: meta, Blocks: blocks})
}

// EncodeToken converts a single token to its wire representation.
func EncodeToken(tok Token) (any, error) {
	switch t := tok.(type) {
	case *Header:
		inlines, err := encodeTokens(t.Inlines)
		if err != nil {
			return nil, err
		}
		return encodedToken{T: "Header", C: []any{t.Level, encodeAttr(t.Attr), inlines}}, nil
	case *Para:
		return encodeContainer("Para", t.Inlines)
	case *Plain:
		return encodeContainer("Plain", t.Inlines)
	case *BlockQuote:
		return encodeContainer("BlockQuote", t.Blocks)
	case *CodeBlock:
		return encodedToken{T: "CodeBlock", C: []any{encodeAttr(t.Attr), t.Text}}, nil
	case *HorizontalRule:
		return encodedToken{T: "HorizontalRule"}, nil
	case *BulletList:
		items, err := encodeItems(t.Blocks)
		if err != nil {
			return nil, err
		}
		return encodedToken{T: "BulletList", C: items}, nil
	case *OrderedList:
		items, err := encodeItems(t.Blocks)
		if err != nil {
			return nil, err
		}
		la := t.ListAttributes
		return encodedToken{T: "OrderedList", C: []any{
			[]any{la.Start, encodedToken{T: la.Style}, encodedToken{T: la.Delim}},
			items,
		}}, nil
	case *LineBreak:
		return encodedToken{T: "LineBreak"}, nil
	case *SoftBreak:
		return encodedToken{T: "SoftBreak"}, nil
	case *Space:
		return encodedToken{T: "Space"}, nil
	case *Str:
		return encodedToken{T: "Str", C: t.Text}, nil
	case *Emph:
		return encodeContainer("Emph", t.Inlines)
	case *Strong:
		return encodeContainer("Strong", t.Inlines)
	case *Link:
		inlines, err := encodeTokens(t.Inlines)
		if err != nil {
			return nil, err
		}
		return encodedToken{T: "Link", C: []any{encodeAttr(t.Attr), inlines, []string{t.Target.URL, t.Target.Title}}}, nil
	case *Image:
		alt, err := encodeTokens(t.Alt)
		if err != nil {
			return nil, err
		}
		return encodedToken{T: "Image", C: []any{encodeAttr(t.Attr), alt, []string{t.Target.URL, t.Target.Title}}}, nil
	case *Code:
		return encodedToken{T: "Code", C: []any{encodeAttr(t.Attr), t.Text}}, nil
	default:
		return nil, fmt.Errorf("pandoc: cannot encode %T", tok)
	}
}

func encodeContainer(tag string, children []Token) (any, error) {
	out, err := encodeTokens(children)
	if err != nil {
		return nil, err
	}
	return encodedToken{T: tag, C: out}, nil
}

func encodeTokens(tokens []Token) ([]any, error) {
	out := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		enc, err := EncodeToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func encodeItems(items [][]Token) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, group := range items {
		enc, err := encodeTokens(group)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func encodeAttr(a Attr) []any {
	classes := a.Classes
	if classes == nil {
		classes = []string{}
	}
	kvs := a.KeyVals
	if kvs == nil {
		kvs = [][2]string{}
	}
	return []any{a.ID, classes, kvs}
}
