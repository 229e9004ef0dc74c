package runtime

import (
	"context"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/pandoc"
	"github.com/aretw0/panmirror/pkg/schema"
)

// Walker converts a document one top-level block at a time. Between steps the
// conversion state is complete and can be inspected.
type Walker struct {
	engine  *Engine
	state   *State
	ctx     context.Context
	blocks  []pandoc.Token
	pos     int
	started time.Time
	err     error
	done    bool
}

// Walk prepares a step-wise conversion of doc.
func (e *Engine) Walk(ctx context.Context, doc *pandoc.Document) *Walker {
	w := &Walker{
		engine:  e,
		state:   e.newState(ctx),
		ctx:     ctx,
		blocks:  doc.Blocks,
		started: time.Now(),
	}
	if e.hooks.OnConvertStart != nil {
		e.hooks.OnConvertStart(ctx, &domain.ConvertEvent{
			EventBase: domain.EventBase{Timestamp: w.started, Type: domain.EventConvertStart},
			Blocks:    len(doc.Blocks),
		})
	}
	e.logger.Debug("conversion started", "blocks", len(doc.Blocks))
	return w
}

// Done reports whether every block has been dispatched or a step failed.
func (w *Walker) Done() bool { return w.err != nil || w.pos >= len(w.blocks) }

// Position is the index of the next block to dispatch.
func (w *Walker) Position() int { return w.pos }

// Depth is the number of open frames; it is 1 between steps.
func (w *Walker) Depth() int { return w.state.Depth() }

// Step dispatches the next top-level block.
func (w *Walker) Step() error {
	if w.err != nil {
		return w.err
	}
	if w.pos >= len(w.blocks) {
		return nil
	}
	tok := w.blocks[w.pos]
	w.pos++
	if err := w.engine.Dispatch(w.state, tok); err != nil {
		w.fail(err)
		return err
	}
	return nil
}

// Result finishes the conversion and returns the document. It may only be
// called once, after Done reports true.
func (w *Walker) Result() (*schema.Node, error) {
	if w.done {
		return nil, errWalkFinished
	}
	if w.err != nil {
		return nil, w.err
	}
	if w.pos < len(w.blocks) {
		return nil, errWalkIncomplete
	}
	doc, err := w.state.TopNode()
	if err != nil {
		w.fail(err)
		return nil, err
	}
	w.done = true
	w.finish(nil)
	return doc, nil
}

func (w *Walker) fail(err error) {
	w.err = err
	w.finish(err)
}

func (w *Walker) finish(err error) {
	e := w.engine
	duration := time.Since(w.started)
	if err != nil {
		e.logger.Debug("conversion failed", "blocks", len(w.blocks), "position", w.pos, "duration", duration, "err", err)
	} else {
		e.logger.Debug("conversion finished", "blocks", len(w.blocks), "duration", duration)
	}
	if e.hooks.OnConvertEnd != nil {
		e.hooks.OnConvertEnd(w.ctx, &domain.ConvertEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventConvertEnd},
			Blocks:    len(w.blocks),
			Duration:  duration,
			Err:       err,
		})
	}
}
