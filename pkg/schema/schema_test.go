package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/panmirror/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, s *schema.Schema, name string) *schema.NodeType {
	t.Helper()
	nt, err := s.NodeType(name)
	require.NoError(t, err)
	return nt
}

func mustText(t *testing.T, s *schema.Schema, text string, marks ...schema.Mark) *schema.Node {
	t.Helper()
	var set schema.MarkSet
	for _, m := range marks {
		set = set.AddToSet(m)
	}
	n, err := s.Text(text, set)
	require.NoError(t, err)
	return n
}

func mustMark(t *testing.T, s *schema.Schema, name string, attrs map[string]any) schema.Mark {
	t.Helper()
	mt, err := s.MarkType(name)
	require.NoError(t, err)
	m, err := mt.Create(attrs)
	require.NoError(t, err)
	return m
}

func TestBasic_Lookup(t *testing.T) {
	s := schema.Basic()
	assert.Same(t, s, schema.Basic())
	assert.Equal(t, "doc", s.Top().Name)

	_, err := s.NodeType("table")
	assert.ErrorIs(t, err, schema.ErrUnknownNodeType)

	_, err = s.MarkType("underline")
	assert.ErrorIs(t, err, schema.ErrUnknownMarkType)

	para := mustType(t, s, "paragraph")
	assert.True(t, para.IsTextblock())
	assert.True(t, para.InGroup("block"))
	assert.False(t, para.IsLeaf())

	hr := mustType(t, s, "horizontal_rule")
	assert.True(t, hr.IsLeaf())

	image := mustType(t, s, "image")
	assert.True(t, image.IsInline())
	assert.True(t, image.HasRequiredAttrs())
}

func TestCreateAndFill(t *testing.T) {
	s := schema.Basic()

	t.Run("empty list item gains a paragraph", func(t *testing.T) {
		item, err := mustType(t, s, "list_item").CreateAndFill(nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "list_item(paragraph)", item.String())
	})

	t.Run("list item starting with a list gains a leading paragraph", func(t *testing.T) {
		inner, err := mustType(t, s, "bullet_list").CreateAndFill(nil, nil, nil)
		require.NoError(t, err)
		item, err := mustType(t, s, "list_item").CreateAndFill(nil, []*schema.Node{inner}, nil)
		require.NoError(t, err)
		assert.Equal(t, "list_item(paragraph, bullet_list(list_item(paragraph)))", item.String())
	})

	t.Run("heading defaults", func(t *testing.T) {
		h, err := mustType(t, s, "heading").CreateAndFill(nil, []*schema.Node{mustText(t, s, "Hi")}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, h.Attr("level"))
		assert.Equal(t, "Hi", h.TextContent())
	})

	t.Run("paragraph cannot hold a block", func(t *testing.T) {
		hr, err := mustType(t, s, "horizontal_rule").CreateAndFill(nil, nil, nil)
		require.NoError(t, err)
		_, err = mustType(t, s, "paragraph").CreateAndFill(nil, []*schema.Node{hr}, nil)
		assert.ErrorIs(t, err, schema.ErrContentMismatch)
	})

	t.Run("list cannot hold paragraphs directly", func(t *testing.T) {
		p, err := mustType(t, s, "paragraph").CreateAndFill(nil, nil, nil)
		require.NoError(t, err)
		_, err = mustType(t, s, "ordered_list").CreateAndFill(nil, []*schema.Node{p}, nil)
		assert.ErrorIs(t, err, schema.ErrContentMismatch)
	})

	t.Run("code block rejects marked text", func(t *testing.T) {
		text := mustText(t, s, "x", mustMark(t, s, "strong", nil))
		_, err := mustType(t, s, "code_block").CreateAndFill(nil, []*schema.Node{text}, nil)
		assert.ErrorIs(t, err, schema.ErrContentMismatch)
	})

	t.Run("invalid attribute type", func(t *testing.T) {
		_, err := mustType(t, s, "heading").CreateAndFill(map[string]any{"level": "two"}, nil, nil)
		require.Error(t, err)
		errs := schema.ValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "heading.level")
	})

	t.Run("missing required attribute", func(t *testing.T) {
		_, err := mustType(t, s, "image").CreateAndFill(nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("text type is refused", func(t *testing.T) {
		_, err := mustType(t, s, "text").CreateAndFill(nil, nil, nil)
		assert.ErrorIs(t, err, schema.ErrContentMismatch)
	})
}

func TestCreate_IsStrict(t *testing.T) {
	s := schema.Basic()
	_, err := mustType(t, s, "list_item").Create(nil, nil, nil)
	assert.ErrorIs(t, err, schema.ErrContentMismatch)

	p, err := mustType(t, s, "paragraph").Create(nil, nil, nil)
	require.NoError(t, err)
	item, err := mustType(t, s, "list_item").Create(nil, []*schema.Node{p}, nil)
	require.NoError(t, err)
	assert.NoError(t, item.Check())
}

func TestEmptyDoc(t *testing.T) {
	doc, err := schema.Basic().EmptyDoc()
	require.NoError(t, err)
	assert.Equal(t, "doc(paragraph)", doc.String())
	assert.NoError(t, doc.Check())
}

func TestText(t *testing.T) {
	s := schema.Basic()
	_, err := s.Text("", nil)
	assert.ErrorIs(t, err, schema.ErrEmptyText)

	n := mustText(t, s, "ab")
	assert.True(t, n.IsText())
	assert.Equal(t, "abc", n.WithText("abc").Text)
	assert.Equal(t, "ab", n.Text)
}

func TestMarkSet(t *testing.T) {
	s := schema.Basic()
	strong := mustMark(t, s, "strong", nil)
	em := mustMark(t, s, "em", nil)
	linkA := mustMark(t, s, "link", map[string]any{"href": "http://a"})
	linkA2 := mustMark(t, s, "link", map[string]any{"href": "http://a", "title": nil})
	linkB := mustMark(t, s, "link", map[string]any{"href": "http://b"})

	assert.True(t, linkA.Eq(linkA2))
	assert.False(t, linkA.Eq(linkB))
	assert.Nil(t, linkA.Attrs["title"])

	set := schema.NoMarks.AddToSet(strong).AddToSet(em)
	assert.Equal(t, "[strong, em]", set.String())
	assert.Equal(t, set, set.AddToSet(strong))

	other := schema.NoMarks.AddToSet(em).AddToSet(strong)
	assert.False(t, set.Equal(other), "order is significant")

	withLinks := set.AddToSet(linkA).AddToSet(linkB)
	assert.Len(t, withLinks, 4)
	assert.Len(t, set, 2, "AddToSet does not mutate its receiver")

	removed := withLinks.RemoveFromSet(em)
	assert.Equal(t, "[strong, link, link]", removed.String())
	assert.True(t, removed.RemoveFromSet(strong).RemoveFromSet(linkA).RemoveFromSet(linkB).Equal(schema.NoMarks))

	_, err := mustMarkType(t, s, "link").Create(nil)
	assert.Error(t, err)
}

func mustMarkType(t *testing.T, s *schema.Schema, name string) *schema.MarkType {
	t.Helper()
	mt, err := s.MarkType(name)
	require.NoError(t, err)
	return mt
}

func TestNodeJSON_RoundTrip(t *testing.T) {
	s := schema.Basic()
	link := mustMark(t, s, "link", map[string]any{"href": "http://x", "title": "t"})

	heading, err := mustType(t, s, "heading").Create(map[string]any{"level": 2}, []*schema.Node{mustText(t, s, "Hi")}, nil)
	require.NoError(t, err)
	para, err := mustType(t, s, "paragraph").Create(nil, []*schema.Node{
		mustText(t, s, "a "),
		mustText(t, s, "go", link),
	}, nil)
	require.NoError(t, err)
	doc, err := s.Top().Create(nil, []*schema.Node{heading, para}, nil)
	require.NoError(t, err)

	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Hi"}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "a "},
				{"type": "text", "text": "go", "marks": [{"type": "link", "attrs": {"href": "http://x", "title": "t"}}]}
			]}
		]
	}`, string(data))

	back, err := s.NodeFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Child(0).Attr("level"))
	again, err := back.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestNodeFromJSON_Errors(t *testing.T) {
	s := schema.Basic()
	tests := map[string]string{
		"unknown type":   `{"type":"table"}`,
		"invalid shape":  `{"type":"doc","content":[{"type":"text","text":"x"}]}`,
		"empty text":     `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":""}]}]}`,
		"unknown mark":   `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"u"}]}]}]}`,
		"unknown field":  `{"type":"doc","children":[]}`,
		"not json":       `{`,
		"text w/o text":  `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text"}]}]}`,
		"fractional int": `{"type":"doc","content":[{"type":"heading","attrs":{"level":2.7}}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.NodeFromJSON([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestCheck_ReportsPath(t *testing.T) {
	s := schema.Basic()
	item := &schema.Node{Type: mustType(t, s, "list_item")}
	list := &schema.Node{Type: mustType(t, s, "bullet_list"), Attrs: map[string]any{"tight": false}, Content: []*schema.Node{item}}
	doc := &schema.Node{Type: s.Top(), Content: []*schema.Node{list}}

	err := doc.Check()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "content/0/content/0: "), err.Error())
	assert.True(t, errors.Is(err, schema.ErrContentMismatch))
}

func TestSchema_MarshalJSON(t *testing.T) {
	data, err := schema.Basic().MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top":"doc"`)
	assert.Contains(t, string(data), `"name":"code_block"`)
	assert.Contains(t, string(data), `"href":{"type":"string","required":true}`)
	assert.Contains(t, string(data), `"code":true`)
	assert.Contains(t, string(data), `"defining":true`)
	assert.Contains(t, string(data), `"name":"link","inclusive":false`)
	assert.Contains(t, string(data), `"name":"em","inclusive":true`)
}
