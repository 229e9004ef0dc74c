package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventConvertStart  EventType = "convert_start"
	EventConvertEnd    EventType = "convert_end"
	EventTokenDispatch EventType = "token_dispatch"
	EventNodeClose     EventType = "node_close"
	EventNodeDropped   EventType = "node_dropped"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ConvertEvent marks the boundaries of a single conversion call.
type ConvertEvent struct {
	EventBase
	Blocks   int           `json:"blocks"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// TokenEvent is emitted before a token is dispatched to its handler.
type TokenEvent struct {
	EventBase
	Tag   string `json:"tag"`
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// NodeEvent represents a frame being closed, successfully or not.
type NodeEvent struct {
	EventBase
	NodeType string `json:"node_type"`
	Path     string `json:"path"`
	Children int    `json:"children"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for converter observability.
// Every field is optional.
type LifecycleHooks struct {
	OnConvertStart  func(context.Context, *ConvertEvent)
	OnConvertEnd    func(context.Context, *ConvertEvent)
	OnTokenDispatch func(context.Context, *TokenEvent)
	OnNodeClose     func(context.Context, *NodeEvent)
	OnNodeDropped   func(context.Context, *NodeEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnConvertStart:  chain(h.OnConvertStart, other.OnConvertStart),
		OnConvertEnd:    chain(h.OnConvertEnd, other.OnConvertEnd),
		OnTokenDispatch: chain(h.OnTokenDispatch, other.OnTokenDispatch),
		OnNodeClose:     chain(h.OnNodeClose, other.OnNodeClose),
		OnNodeDropped:   chain(h.OnNodeDropped, other.OnNodeDropped),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
