package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/pandoc"
	"github.com/aretw0/panmirror/pkg/schema"
)

type boundHandler struct {
	Handler
	node *schema.NodeType
	item *schema.NodeType
	mark *schema.MarkType
}

// Engine converts decoded pandoc documents into schema nodes.
// It holds no per-conversion state and is safe for concurrent use.
type Engine struct {
	schema   *schema.Schema
	table    Table
	handlers map[pandoc.Tag]boundHandler
	policy   domain.MismatchPolicy
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTable replaces the default handler table.
func WithTable(t Table) EngineOption {
	return func(e *Engine) { e.table = t }
}

// WithMismatchPolicy selects what happens to nodes that violate their content rule.
func WithMismatchPolicy(p domain.MismatchPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine binds the handler table to the schema. Every type a handler names
// must exist in the schema.
func NewEngine(s *schema.Schema, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		schema: s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = DefaultTable()
	}

	e.handlers = make(map[pandoc.Tag]boundHandler, len(e.table))
	for tag, h := range e.table {
		b := boundHandler{Handler: h}
		var err error
		switch h.Kind {
		case KindText:
			if h.GetText == nil {
				return nil, fmt.Errorf("handler %s: text handlers need GetText", tag)
			}
		case KindMark:
			b.mark, err = s.MarkType(h.Type)
		case KindBlock, KindLeafNode:
			b.node, err = s.NodeType(h.Type)
		case KindList:
			if b.node, err = s.NodeType(h.Type); err == nil {
				b.item, err = s.NodeType(h.ItemType)
			}
		default:
			err = fmt.Errorf("unsupported handler kind %s", h.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("handler %s: %w", tag, err)
		}
		e.handlers[tag] = b
	}
	return e, nil
}

// Schema returns the target schema.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Table returns the handler table in use.
func (e *Engine) Table() Table { return e.table }

func (e *Engine) newState(ctx context.Context) *State {
	st := NewState(e.schema)
	st.policy = e.policy
	st.hooks = e.hooks
	st.logger = e.logger
	st.ctx = ctx
	return st
}

// Convert walks doc to completion and returns the document node.
// The context only carries values to hooks; the walk itself is not interruptible.
func (e *Engine) Convert(ctx context.Context, doc *pandoc.Document) (*schema.Node, error) {
	w := e.Walk(ctx, doc)
	for !w.Done() {
		if err := w.Step(); err != nil {
			return nil, err
		}
	}
	return w.Result()
}

// Dispatch runs the handler for tok against st.
func (e *Engine) Dispatch(st *State, tok pandoc.Token) error {
	h, ok := e.handlers[tok.Tag()]
	if !ok {
		return &domain.UnknownTagError{Tag: tok.Tag().String(), Path: tok.Path()}
	}
	if e.hooks.OnTokenDispatch != nil {
		e.hooks.OnTokenDispatch(st.ctx, &domain.TokenEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTokenDispatch},
			Tag:       tok.Tag().String(),
			Path:      tok.Path(),
			Depth:     st.Depth(),
		})
	}

	switch h.Kind {
	case KindText:
		return st.AddText(h.GetText(tok))

	case KindMark:
		mark, err := h.mark.Create(attrsOf(h.Handler, tok))
		if err != nil {
			return &domain.StructuralMismatchError{NodeType: h.mark.Name, Path: tok.Path(), Err: err}
		}
		st.OpenMark(mark)
		if h.GetText != nil {
			if err := st.AddText(h.GetText(tok)); err != nil {
				return err
			}
		} else if err := e.dispatchChildren(st, h.Handler, tok); err != nil {
			return err
		}
		return st.CloseMark(mark)

	case KindBlock:
		st.OpenNode(h.node, attrsOf(h.Handler, tok), tok.Path())
		if h.GetText != nil {
			if err := st.AddText(h.GetText(tok)); err != nil {
				return err
			}
		} else if err := e.dispatchChildren(st, h.Handler, tok); err != nil {
			return err
		}
		_, err := st.CloseNode()
		return err

	case KindLeafNode:
		_, err := st.AddNode(h.node, attrsOf(h.Handler, tok), tok.Path())
		return err

	case KindList:
		items, err := itemsOf(h.Handler, tok)
		if err != nil {
			return err
		}
		attrs := attrsOf(h.Handler, tok)
		if isTight(items) {
			attrs = withAttr(attrs, "tight", true)
		}
		st.OpenNode(h.node, attrs, tok.Path())
		for _, group := range items {
			path := tok.Path()
			if len(group) > 0 {
				path = group[0].Path()
			}
			st.OpenNode(h.item, nil, path)
			for _, child := range group {
				if err := e.Dispatch(st, child); err != nil {
					return err
				}
			}
			if _, err := st.CloseNode(); err != nil {
				return err
			}
		}
		_, err = st.CloseNode()
		return err
	}
	return fmt.Errorf("unsupported handler kind %s", h.Kind)
}

func (e *Engine) dispatchChildren(st *State, h Handler, tok pandoc.Token) error {
	children, err := childrenOf(h, tok)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := e.Dispatch(st, child); err != nil {
			return err
		}
	}
	return nil
}

// isTight looks only at the first token of the first item group.
func isTight(items [][]pandoc.Token) bool {
	return len(items) > 0 && len(items[0]) > 0 && items[0][0].Tag() == pandoc.TagPlain
}

func withAttr(attrs map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	out[key] = value
	return out
}
