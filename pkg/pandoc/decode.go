package pandoc

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/goccy/go-json"
)

type wireDocument struct {
	APIVersion []int           `json:"pandoc-api-version"`
	Meta       map[string]any  `json:"meta"`
	Blocks     json.RawMessage `json:"blocks"`
}

type wireToken struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c"`
}

// Decode reads a pandoc JSON document and decodes every token into its typed
// form. The whole input is validated before anything is returned.
func Decode(r io.Reader) (*Document, error) {
	var wire wireDocument
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, &domain.MalformedTokenError{Tag: "Pandoc", Path: "", Expected: "pandoc JSON document", Err: err}
	}
	var raws []json.RawMessage
	if !isArray(wire.Blocks) {
		return nil, &domain.MalformedTokenError{Tag: "Pandoc", Path: "/blocks", Expected: "array of block tokens"}
	}
	if err := json.Unmarshal(wire.Blocks, &raws); err != nil {
		return nil, &domain.MalformedTokenError{Tag: "Pandoc", Path: "/blocks", Expected: "array of block tokens", Err: err}
	}
	blocks := make([]Token, 0, len(raws))
	for i, raw := range raws {
		tok, err := decodeBlock(raw, "/blocks/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, tok)
	}
	return &Document{APIVersion: wire.APIVersion, Meta: wire.Meta, Blocks: blocks}, nil
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

func malformed(tag Tag, path, expected string, err error) error {
	return &domain.MalformedTokenError{Tag: tag.String(), Path: path, Expected: expected, Err: err}
}

func readToken(raw json.RawMessage, path string) (Tag, json.RawMessage, error) {
	var w wireToken
	if err := json.Unmarshal(raw, &w); err != nil || w.T == "" {
		return TagInvalid, nil, &domain.MalformedTokenError{Tag: "Token", Path: path, Expected: `object {"t": tag, "c": payload}`, Err: err}
	}
	tag, ok := ParseTag(w.T)
	if !ok {
		return TagInvalid, nil, &domain.UnknownTagError{Tag: w.T, Path: path}
	}
	return tag, w.C, nil
}

func decodeBlock(raw json.RawMessage, path string) (Token, error) {
	tag, c, err := readToken(raw, path)
	if err != nil {
		return nil, err
	}
	if !tag.IsBlock() {
		return nil, malformed(tag, path, "block token", nil)
	}
	cpath := path + "/c"
	loc := Loc{Pointer: path}

	switch tag {
	case TagHeader:
		parts, err := tuple(c, 3, tag, cpath, "[level, attr, inlines]")
		if err != nil {
			return nil, err
		}
		h := &Header{Loc: loc}
		if err := json.Unmarshal(parts[0], &h.Level); err != nil {
			return nil, malformed(tag, cpath+"/0", "integer level", err)
		}
		if h.Attr, err = decodeAttr(parts[1], tag, cpath+"/1"); err != nil {
			return nil, err
		}
		if h.Inlines, err = decodeInlines(parts[2], tag, cpath+"/2"); err != nil {
			return nil, err
		}
		return h, nil

	case TagPara, TagPlain:
		inlines, err := decodeInlines(c, tag, cpath)
		if err != nil {
			return nil, err
		}
		if tag == TagPlain {
			return &Plain{Loc: loc, Inlines: inlines}, nil
		}
		return &Para{Loc: loc, Inlines: inlines}, nil

	case TagBlockQuote:
		blocks, err := decodeBlocks(c, tag, cpath)
		if err != nil {
			return nil, err
		}
		return &BlockQuote{Loc: loc, Blocks: blocks}, nil

	case TagCodeBlock:
		parts, err := tuple(c, 2, tag, cpath, "[attr, text]")
		if err != nil {
			return nil, err
		}
		cb := &CodeBlock{Loc: loc}
		if cb.Attr, err = decodeAttr(parts[0], tag, cpath+"/0"); err != nil {
			return nil, err
		}
		if cb.Text, err = decodeString(parts[1], tag, cpath+"/1"); err != nil {
			return nil, err
		}
		return cb, nil

	case TagHorizontalRule:
		if err := noPayload(c, tag, cpath); err != nil {
			return nil, err
		}
		return &HorizontalRule{Loc: loc}, nil

	case TagBulletList:
		items, err := decodeItems(c, tag, cpath)
		if err != nil {
			return nil, err
		}
		return &BulletList{Loc: loc, Blocks: items}, nil

	case TagOrderedList:
		parts, err := tuple(c, 2, tag, cpath, "[list attributes, items]")
		if err != nil {
			return nil, err
		}
		ol := &OrderedList{Loc: loc}
		if ol.ListAttributes, err = decodeListAttributes(parts[0], tag, cpath+"/0"); err != nil {
			return nil, err
		}
		if ol.Blocks, err = decodeItems(parts[1], tag, cpath+"/1"); err != nil {
			return nil, err
		}
		return ol, nil
	}
	return nil, malformed(tag, path, "block token", nil)
}

func decodeInline(raw json.RawMessage, path string) (Token, error) {
	tag, c, err := readToken(raw, path)
	if err != nil {
		return nil, err
	}
	if !tag.IsInline() {
		return nil, malformed(tag, path, "inline token", nil)
	}
	cpath := path + "/c"
	loc := Loc{Pointer: path}

	switch tag {
	case TagStr:
		text, err := decodeString(c, tag, cpath)
		if err != nil {
			return nil, err
		}
		return &Str{Loc: loc, Text: text}, nil

	case TagSpace, TagSoftBreak, TagLineBreak:
		if err := noPayload(c, tag, cpath); err != nil {
			return nil, err
		}
		switch tag {
		case TagSpace:
			return &Space{Loc: loc}, nil
		case TagSoftBreak:
			return &SoftBreak{Loc: loc}, nil
		}
		return &LineBreak{Loc: loc}, nil

	case TagEmph, TagStrong:
		inlines, err := decodeInlines(c, tag, cpath)
		if err != nil {
			return nil, err
		}
		if tag == TagEmph {
			return &Emph{Loc: loc, Inlines: inlines}, nil
		}
		return &Strong{Loc: loc, Inlines: inlines}, nil

	case TagLink, TagImage:
		parts, err := tuple(c, 3, tag, cpath, "[attr, inlines, target]")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0], tag, cpath+"/0")
		if err != nil {
			return nil, err
		}
		inlines, err := decodeInlines(parts[1], tag, cpath+"/1")
		if err != nil {
			return nil, err
		}
		target, err := decodeTarget(parts[2], tag, cpath+"/2")
		if err != nil {
			return nil, err
		}
		if tag == TagLink {
			return &Link{Loc: loc, Attr: attr, Inlines: inlines, Target: target}, nil
		}
		return &Image{Loc: loc, Attr: attr, Alt: inlines, Target: target}, nil

	case TagCode:
		parts, err := tuple(c, 2, tag, cpath, "[attr, text]")
		if err != nil {
			return nil, err
		}
		code := &Code{Loc: loc}
		if code.Attr, err = decodeAttr(parts[0], tag, cpath+"/0"); err != nil {
			return nil, err
		}
		if code.Text, err = decodeString(parts[1], tag, cpath+"/1"); err != nil {
			return nil, err
		}
		return code, nil
	}
	return nil, malformed(tag, path, "inline token", nil)
}

func tuple(c json.RawMessage, n int, tag Tag, path, expected string) ([]json.RawMessage, error) {
	var parts []json.RawMessage
	if !isArray(c) {
		return nil, malformed(tag, path, expected, nil)
	}
	if err := json.Unmarshal(c, &parts); err != nil || len(parts) != n {
		return nil, malformed(tag, path, expected, err)
	}
	return parts, nil
}

func decodeBlocks(c json.RawMessage, tag Tag, path string) ([]Token, error) {
	var raws []json.RawMessage
	if !isArray(c) {
		return nil, malformed(tag, path, "array of block tokens", nil)
	}
	if err := json.Unmarshal(c, &raws); err != nil {
		return nil, malformed(tag, path, "array of block tokens", err)
	}
	out := make([]Token, 0, len(raws))
	for i, raw := range raws {
		tok, err := decodeBlock(raw, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func decodeInlines(c json.RawMessage, tag Tag, path string) ([]Token, error) {
	var raws []json.RawMessage
	if !isArray(c) {
		return nil, malformed(tag, path, "array of inline tokens", nil)
	}
	if err := json.Unmarshal(c, &raws); err != nil {
		return nil, malformed(tag, path, "array of inline tokens", err)
	}
	out := make([]Token, 0, len(raws))
	for i, raw := range raws {
		tok, err := decodeInline(raw, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func decodeItems(c json.RawMessage, tag Tag, path string) ([][]Token, error) {
	var raws []json.RawMessage
	if !isArray(c) {
		return nil, malformed(tag, path, "array of item groups", nil)
	}
	if err := json.Unmarshal(c, &raws); err != nil {
		return nil, malformed(tag, path, "array of item groups", err)
	}
	out := make([][]Token, 0, len(raws))
	for i, raw := range raws {
		group, err := decodeBlocks(raw, tag, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

func decodeString(c json.RawMessage, tag Tag, path string) (string, error) {
	var s string
	if c = bytes.TrimSpace(c); len(c) == 0 || c[0] != '"' {
		return "", malformed(tag, path, "string", nil)
	}
	if err := json.Unmarshal(c, &s); err != nil {
		return "", malformed(tag, path, "string", err)
	}
	return s, nil
}

func decodeAttr(c json.RawMessage, tag Tag, path string) (Attr, error) {
	parts, err := tuple(c, 3, tag, path, "attr [id, classes, key-values]")
	if err != nil {
		return Attr{}, err
	}
	var a Attr
	if a.ID, err = decodeString(parts[0], tag, path+"/0"); err != nil {
		return Attr{}, err
	}
	if err := json.Unmarshal(parts[1], &a.Classes); err != nil {
		return Attr{}, malformed(tag, path+"/1", "array of class names", err)
	}
	if err := json.Unmarshal(parts[2], &a.KeyVals); err != nil {
		return Attr{}, malformed(tag, path+"/2", "array of [key, value] pairs", err)
	}
	return a, nil
}

func decodeTarget(c json.RawMessage, tag Tag, path string) (Target, error) {
	parts, err := tuple(c, 2, tag, path, "target [url, title]")
	if err != nil {
		return Target{}, err
	}
	var t Target
	if t.URL, err = decodeString(parts[0], tag, path+"/0"); err != nil {
		return Target{}, err
	}
	if t.Title, err = decodeString(parts[1], tag, path+"/1"); err != nil {
		return Target{}, err
	}
	return t, nil
}

type wireEnum struct {
	T string `json:"t"`
}

func decodeListAttributes(c json.RawMessage, tag Tag, path string) (ListAttributes, error) {
	parts, err := tuple(c, 3, tag, path, "list attributes [start, style, delimiter]")
	if err != nil {
		return ListAttributes{}, err
	}
	var la ListAttributes
	if err := json.Unmarshal(parts[0], &la.Start); err != nil {
		return ListAttributes{}, malformed(tag, path+"/0", "integer start number", err)
	}
	var style, delim wireEnum
	if err := json.Unmarshal(parts[1], &style); err != nil || style.T == "" {
		return ListAttributes{}, malformed(tag, path+"/1", `list number style {"t": name}`, err)
	}
	if err := json.Unmarshal(parts[2], &delim); err != nil || delim.T == "" {
		return ListAttributes{}, malformed(tag, path+"/2", `list delimiter {"t": name}`, err)
	}
	la.Style, la.Delim = style.T, delim.T
	return la, nil
}

// noPayload accepts an absent or null payload only.
func noPayload(c json.RawMessage, tag Tag, path string) error {
	c = bytes.TrimSpace(c)
	if len(c) == 0 || bytes.Equal(c, []byte("null")) {
		return nil
	}
	return malformed(tag, path, "no payload", nil)
}

func isArray(c json.RawMessage) bool {
	c = bytes.TrimSpace(c)
	return len(c) > 0 && c[0] == '['
}

// String renders a short description used in logs.
func (d *Document) String() string {
	return fmt.Sprintf("pandoc document (%d blocks)", len(d.Blocks))
}
