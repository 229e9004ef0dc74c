package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/panmirror/internal/runtime"
	"github.com/aretw0/panmirror/pkg/dsl"
	"github.com/aretw0/panmirror/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marks(t *testing.T, names ...string) []schema.Mark {
	t.Helper()
	out := make([]schema.Mark, len(names))
	for i, name := range names {
		mt, err := schema.Basic().MarkType(name)
		require.NoError(t, err)
		out[i], err = mt.Create(nil)
		require.NoError(t, err)
	}
	return out
}

func paragraphType(t *testing.T) *schema.NodeType {
	t.Helper()
	p, err := schema.Basic().NodeType("paragraph")
	require.NoError(t, err)
	return p
}

func TestState_RootFrameIsProtected(t *testing.T) {
	st := runtime.NewState(schema.Basic())
	assert.Equal(t, 1, st.Depth())

	_, err := st.CloseNode()
	assert.ErrorIs(t, err, runtime.ErrFrameUnderflow)
	assert.Equal(t, 1, st.Depth())
}

func TestState_TopNodeRequiresClosedFrames(t *testing.T) {
	st := runtime.NewState(schema.Basic())
	st.OpenNode(paragraphType(t), nil, "/blocks/0")

	_, err := st.TopNode()
	assert.ErrorIs(t, err, runtime.ErrUnclosedFrames)

	_, err = st.CloseNode()
	require.NoError(t, err)
	doc, err := st.TopNode()
	require.NoError(t, err)
	assert.Equal(t, "doc(paragraph)", doc.String())
}

func TestState_MarksCloseInOrder(t *testing.T) {
	m := marks(t, "strong", "em")
	strong, em := m[0], m[1]

	st := runtime.NewState(schema.Basic())
	st.OpenNode(paragraphType(t), nil, "")
	st.OpenMark(strong)
	st.OpenMark(em)

	assert.ErrorIs(t, st.CloseMark(strong), runtime.ErrMarkNotOpen)
	require.NoError(t, st.CloseMark(em))
	require.NoError(t, st.CloseMark(strong))
	assert.ErrorIs(t, st.CloseMark(strong), runtime.ErrMarkNotOpen)
	assert.Empty(t, st.Marks())
}

func TestState_TopNodeRequiresClosedMarks(t *testing.T) {
	st := runtime.NewState(schema.Basic())
	st.OpenMark(marks(t, "em")[0])
	_, err := st.TopNode()
	assert.ErrorIs(t, err, runtime.ErrUnclosedFrames)
}

func TestState_AddTextMergesEqualMarks(t *testing.T) {
	strong := marks(t, "strong")[0]

	st := runtime.NewState(schema.Basic())
	st.OpenNode(paragraphType(t), nil, "")
	require.NoError(t, st.AddText("a"))
	require.NoError(t, st.AddText(""))
	require.NoError(t, st.AddText("b"))
	st.OpenMark(strong)
	require.NoError(t, st.AddText("c"))
	require.NoError(t, st.CloseMark(strong))
	require.NoError(t, st.AddText("d"))

	p, err := st.CloseNode()
	require.NoError(t, err)
	assert.Equal(t, `paragraph("ab", strong("c"), "d")`, p.String())
}

func TestState_CloseNodeResetsMarks(t *testing.T) {
	em := marks(t, "em")[0]

	st := runtime.NewState(schema.Basic())
	st.OpenNode(paragraphType(t), nil, "")
	st.OpenMark(em)
	require.NoError(t, st.AddText("x"))
	_, err := st.CloseNode()
	require.NoError(t, err)
	assert.Empty(t, st.Marks())

	st.OpenNode(paragraphType(t), nil, "")
	require.NoError(t, st.AddText("y"))
	p, err := st.CloseNode()
	require.NoError(t, err)
	assert.Empty(t, p.Child(0).Marks)
	require.NoError(t, st.CloseMark(em), "the open mark stack survives block boundaries")
}

func TestWalker_Steps(t *testing.T) {
	e := newEngine(t)
	doc := decode(t, dsl.New().Text("one").Text("two").Rule())

	w := e.Walk(context.Background(), doc)
	for i := 0; i < 3; i++ {
		assert.False(t, w.Done())
		assert.Equal(t, i, w.Position())
		require.NoError(t, w.Step())
		assert.Equal(t, 1, w.Depth(), "frames are balanced between top-level blocks")
	}
	assert.True(t, w.Done())
	require.NoError(t, w.Step(), "stepping past the end is a no-op")

	node, err := w.Result()
	require.NoError(t, err)
	assert.Equal(t, `doc(paragraph("one"), paragraph("two"), horizontal_rule)`, node.String())

	_, err = w.Result()
	assert.Error(t, err)
}

func TestWalker_ResultBeforeEnd(t *testing.T) {
	e := newEngine(t)
	w := e.Walk(context.Background(), decode(t, dsl.New().Text("one").Text("two")))
	require.NoError(t, w.Step())
	_, err := w.Result()
	assert.Error(t, err)
}
