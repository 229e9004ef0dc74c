package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/schema"
)

var (
	// ErrFrameUnderflow is returned when a handler tries to close the root frame.
	ErrFrameUnderflow = errors.New("cannot close the document root frame")
	// ErrUnclosedFrames is returned by TopNode while block frames are still open.
	ErrUnclosedFrames = errors.New("unclosed frames at end of document")
	// ErrMarkNotOpen is returned when a mark is closed out of order.
	ErrMarkNotOpen = errors.New("mark is not the innermost open mark")
)

type frame struct {
	typ     *schema.NodeType
	attrs   map[string]any
	content []*schema.Node
	path    string
}

// State is the builder a single conversion mutates. Frames are kept in an
// explicit stack whose bottom element is the document root.
// A State is not safe for concurrent use and must not be reused.
type State struct {
	schema *schema.Schema
	frames []frame
	marks  schema.MarkSet
	open   []schema.Mark

	policy domain.MismatchPolicy
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	ctx    context.Context
}

// NewState creates a state whose root frame is the schema's top node type.
func NewState(s *schema.Schema) *State {
	return &State{
		schema: s,
		frames: []frame{{typ: s.Top(), path: ""}},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    context.Background(),
	}
}

// Depth is the number of open frames, including the root.
func (s *State) Depth() int { return len(s.frames) }

// Marks returns the currently active marks.
func (s *State) Marks() schema.MarkSet { return s.marks }

func (s *State) top() *frame { return &s.frames[len(s.frames)-1] }

// OpenNode pushes an empty frame.
func (s *State) OpenNode(t *schema.NodeType, attrs map[string]any, path string) {
	s.frames = append(s.frames, frame{typ: t, attrs: attrs, path: path})
}

// CloseNode pops the top frame and appends the node built from it to its parent.
// Active marks are cleared first. Under MismatchDrop a node that cannot be built
// is omitted and CloseNode returns (nil, nil).
func (s *State) CloseNode() (*schema.Node, error) {
	if len(s.frames) <= 1 {
		return nil, ErrFrameUnderflow
	}
	s.marks = schema.NoMarks

	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	node, err := f.typ.CreateAndFill(f.attrs, f.content, nil)
	if err != nil {
		return nil, s.mismatch(f.typ, f.path, len(f.content), err)
	}
	s.emitClose(f.typ, f.path, len(f.content))
	p := s.top()
	p.content = append(p.content, node)
	return node, nil
}

// mismatch applies the policy to a node that could not be built.
func (s *State) mismatch(t *schema.NodeType, path string, children int, cause error) error {
	mErr := &domain.StructuralMismatchError{NodeType: t.Name, Path: path, Err: cause}
	if s.policy != domain.MismatchDrop {
		return mErr
	}
	s.logger.Warn("dropping node", "type", t.Name, "path", path, "err", cause)
	if s.hooks.OnNodeDropped != nil {
		s.hooks.OnNodeDropped(s.ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeDropped},
			NodeType:  t.Name,
			Path:      path,
			Children:  children,
			Err:       mErr,
		})
	}
	return nil
}

func (s *State) emitClose(t *schema.NodeType, path string, children int) {
	if s.hooks.OnNodeClose == nil {
		return
	}
	s.hooks.OnNodeClose(s.ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeClose},
		NodeType:  t.Name,
		Path:      path,
		Children:  children,
	})
}

// AddText appends text with the active marks, merging it into the previous
// text node when both carry the same marks. Empty text is ignored.
func (s *State) AddText(text string) error {
	if text == "" {
		return nil
	}
	f := s.top()
	if n := len(f.content); n > 0 {
		last := f.content[n-1]
		if last.IsText() && last.Marks.Equal(s.marks) {
			f.content[n-1] = last.WithText(last.Text + text)
			return nil
		}
	}
	node, err := s.schema.Text(text, s.marks)
	if err != nil {
		return err
	}
	f.content = append(f.content, node)
	return nil
}

// AddNode appends a childless node to the top frame. Inline nodes carry the
// active marks.
func (s *State) AddNode(t *schema.NodeType, attrs map[string]any, path string) (*schema.Node, error) {
	var marks schema.MarkSet
	if t.IsInline() {
		marks = s.marks
	}
	node, err := t.CreateAndFill(attrs, nil, marks)
	if err != nil {
		return nil, s.mismatch(t, path, 0, err)
	}
	f := s.top()
	f.content = append(f.content, node)
	return node, nil
}

// OpenMark activates m.
func (s *State) OpenMark(m schema.Mark) {
	s.open = append(s.open, m)
	s.marks = s.marks.AddToSet(m)
}

// CloseMark deactivates m, which must be the innermost open mark. The mark stays
// active while an enclosing equal mark is still open.
func (s *State) CloseMark(m schema.Mark) error {
	n := len(s.open)
	if n == 0 || !s.open[n-1].Eq(m) {
		return fmt.Errorf("%w: %s", ErrMarkNotOpen, m.Type.Name)
	}
	s.open = s.open[:n-1]
	if !m.IsInSet(s.open) {
		s.marks = s.marks.RemoveFromSet(m)
	}
	return nil
}

// TopNode builds the document from the root frame. It fails while any other
// frame or mark is still open. The root is never dropped.
func (s *State) TopNode() (*schema.Node, error) {
	if len(s.frames) != 1 {
		return nil, fmt.Errorf("%w: %d open", ErrUnclosedFrames, len(s.frames)-1)
	}
	if len(s.open) != 0 {
		return nil, fmt.Errorf("%w: %d marks still open", ErrUnclosedFrames, len(s.open))
	}
	root := s.frames[0]
	node, err := root.typ.CreateAndFill(root.attrs, root.content, nil)
	if err != nil {
		return nil, &domain.StructuralMismatchError{NodeType: root.typ.Name, Path: "/blocks", Err: err}
	}
	s.emitClose(root.typ, "/blocks", len(root.content))
	return node, nil
}

var (
	errWalkIncomplete = errors.New("walk has not reached the end of the document")
	errWalkFinished   = errors.New("walk result already taken")
)
