package pandoc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/pandoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Output of `pandoc -f commonmark -t json` for a small document.
const sample = `{
  "pandoc-api-version": [1, 23, 1],
  "meta": {},
  "blocks": [
    {"t": "Header", "c": [2, ["intro", [], []], [{"t": "Str", "c": "Intro"}]]},
    {"t": "Para", "c": [
      {"t": "Str", "c": "A"}, {"t": "Space"},
      {"t": "Strong", "c": [{"t": "Emph", "c": [{"t": "Str", "c": "bold"}]}]},
      {"t": "SoftBreak"},
      {"t": "Link", "c": [["", [], []], [{"t": "Str", "c": "go"}], ["http://x", "t"]]},
      {"t": "Code", "c": [["", [], []], "x := 1"]},
      {"t": "Image", "c": [["", [], []], [{"t": "Str", "c": "a"}, {"t": "Space"}, {"t": "Emph", "c": [{"t": "Str", "c": "cat"}]}], ["cat.png", ""]]},
      {"t": "LineBreak"}
    ]},
    {"t": "CodeBlock", "c": [["", ["go", "numberLines"], [["startFrom", "3"]]], "fmt.Println()"]},
    {"t": "OrderedList", "c": [[3, {"t": "Decimal"}, {"t": "Period"}], [
      [{"t": "Plain", "c": [{"t": "Str", "c": "one"}]}],
      [{"t": "Plain", "c": [{"t": "Str", "c": "two"}]}]
    ]]},
    {"t": "BulletList", "c": [[{"t": "Para", "c": []}]]},
    {"t": "BlockQuote", "c": [{"t": "HorizontalRule"}]}
  ]
}`

func TestDecode_Sample(t *testing.T) {
	doc, err := pandoc.Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 23, 1}, doc.APIVersion)
	require.Len(t, doc.Blocks, 6)

	h, ok := doc.Blocks[0].(*pandoc.Header)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "intro", h.Attr.ID)
	assert.Equal(t, "/blocks/0", h.Path())
	assert.Equal(t, "/blocks/0/c/2/0", h.Inlines[0].Path())

	para := doc.Blocks[1].(*pandoc.Para)
	require.Len(t, para.Inlines, 8)
	link := para.Inlines[4].(*pandoc.Link)
	assert.Equal(t, pandoc.Target{URL: "http://x", Title: "t"}, link.Target)
	assert.Equal(t, "x := 1", para.Inlines[5].(*pandoc.Code).Text)
	img := para.Inlines[6].(*pandoc.Image)
	assert.Equal(t, "cat.png", img.Target.URL)
	assert.Equal(t, "a cat", pandoc.PlainText(img.Alt))
	assert.Equal(t, pandoc.TagSoftBreak, para.Inlines[3].Tag())

	cb := doc.Blocks[2].(*pandoc.CodeBlock)
	assert.Equal(t, []string{"go", "numberLines"}, cb.Attr.Classes)
	assert.Equal(t, [][2]string{{"startFrom", "3"}}, cb.Attr.KeyVals)

	ol := doc.Blocks[3].(*pandoc.OrderedList)
	assert.Equal(t, pandoc.ListAttributes{Start: 3, Style: "Decimal", Delim: "Period"}, ol.ListAttributes)
	require.Len(t, ol.Items(), 2)
	assert.Equal(t, "/blocks/3/c/1/1/0", ol.Items()[1][0].Path())

	bl := doc.Blocks[4].(*pandoc.BulletList)
	require.Len(t, bl.Items(), 1)
	assert.Empty(t, bl.Items()[0][0].(*pandoc.Para).Inlines)

	bq := doc.Blocks[5].(*pandoc.BlockQuote)
	assert.Equal(t, pandoc.TagHorizontalRule, bq.Children()[0].Tag())
}

func TestDecode_UnknownTag(t *testing.T) {
	input := `{"blocks":[{"t":"Para","c":[{"t":"Str","c":"a"}]},{"t":"Div","c":[["",[],[]],[]]}]}`
	doc, err := pandoc.DecodeBytes([]byte(input))
	assert.Nil(t, doc)
	require.ErrorIs(t, err, domain.ErrUnknownTag)

	var tagErr *domain.UnknownTagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "Div", tagErr.Tag)
	assert.Equal(t, "/blocks/1", tagErr.Path)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		block string
		path  string
	}{
		{"header arity", `{"t":"Header","c":[1,["",[],[]]]}`, "/blocks/0/c"},
		{"header level type", `{"t":"Header","c":["1",["",[],[]],[]]}`, "/blocks/0/c/0"},
		{"para payload", `{"t":"Para","c":"text"}`, "/blocks/0/c"},
		{"para missing payload", `{"t":"Para"}`, "/blocks/0/c"},
		{"str payload", `{"t":"Para","c":[{"t":"Str","c":3}]}`, "/blocks/0/c/0/c"},
		{"str null", `{"t":"Para","c":[{"t":"Str","c":null}]}`, "/blocks/0/c/0/c"},
		{"link target", `{"t":"Para","c":[{"t":"Link","c":[["",[],[]],[],["u"]]}]}`, "/blocks/0/c/0/c/2"},
		{"attr arity", `{"t":"CodeBlock","c":[["",[]],"x"]}`, "/blocks/0/c/0"},
		{"list attributes", `{"t":"OrderedList","c":[[1,"Decimal",{"t":"Period"}],[]]}`, "/blocks/0/c/0/1"},
		{"item group", `{"t":"BulletList","c":[{"t":"Plain","c":[]}]}`, "/blocks/0/c/0"},
		{"inline in block position", `{"t":"Str","c":"x"}`, "/blocks/0"},
		{"block in inline position", `{"t":"Para","c":[{"t":"Para","c":[]}]}`, "/blocks/0/c/0"},
		{"not a token", `[1,2]`, "/blocks/0"},
		{"space payload", `{"t":"Para","c":[{"t":"Space","c":"zz"}]}`, "/blocks/0/c/0/c"},
		{"soft break payload", `{"t":"Para","c":[{"t":"SoftBreak","c":[]}]}`, "/blocks/0/c/0/c"},
		{"line break payload", `{"t":"Plain","c":[{"t":"LineBreak","c":0}]}`, "/blocks/0/c/0/c"},
		{"horizontal rule payload", `{"t":"HorizontalRule","c":{"x":1}}`, "/blocks/0/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pandoc.DecodeBytes([]byte(`{"blocks":[` + tt.block + `]}`))
			require.ErrorIs(t, err, domain.ErrMalformedToken)
			var mErr *domain.MalformedTokenError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, tt.path, mErr.Path)
			assert.NotEmpty(t, mErr.Expected)
		})
	}
}

func TestDecode_DocumentShape(t *testing.T) {
	for _, input := range []string{`{}`, `{"blocks":{}}`, `not json`, `{"blocks":null}`} {
		_, err := pandoc.DecodeBytes([]byte(input))
		assert.ErrorIs(t, err, domain.ErrMalformedToken, input)
	}
	doc, err := pandoc.DecodeBytes([]byte(`{"blocks":[]}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Blocks)
}

func TestEncode_RoundTrip(t *testing.T) {
	doc, err := pandoc.Decode(strings.NewReader(sample))
	require.NoError(t, err)

	data, err := doc.MarshalJSON()
	require.NoError(t, err)

	again, err := pandoc.DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Blocks, again.Blocks)
}

func TestTags(t *testing.T) {
	for _, tag := range pandoc.Tags() {
		parsed, ok := pandoc.ParseTag(tag.String())
		require.True(t, ok, tag.String())
		assert.Equal(t, tag, parsed)
		assert.NotEqual(t, tag.IsBlock(), tag.IsInline(), tag.String())
	}
	_, ok := pandoc.ParseTag("Table")
	assert.False(t, ok)
	assert.True(t, pandoc.TagCodeBlock.IsBlock())
	assert.True(t, pandoc.TagCode.IsInline())
}

func TestPlainText(t *testing.T) {
	tokens := []pandoc.Token{
		&pandoc.Str{Text: "a"},
		&pandoc.SoftBreak{},
		&pandoc.Strong{Inlines: []pandoc.Token{&pandoc.Str{Text: "b"}, &pandoc.LineBreak{}}},
		&pandoc.Link{Inlines: []pandoc.Token{&pandoc.Code{Text: "c"}}},
	}
	assert.Equal(t, "a b c", pandoc.PlainText(tokens))
	assert.Equal(t, "", pandoc.PlainText(nil))
}
