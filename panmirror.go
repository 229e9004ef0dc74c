package panmirror

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/panmirror/internal/runtime"
	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/pandoc"
	"github.com/aretw0/panmirror/pkg/ports"
	"github.com/aretw0/panmirror/pkg/schema"
	"github.com/zeebo/blake3"
)

// Handler describes how one pandoc tag is turned into document nodes or marks.
type Handler = runtime.Handler

// HandlerTable maps every pandoc tag the converter understands to its handler.
type HandlerTable = runtime.Table

// Kind is the conversion strategy of a handler.
type Kind = runtime.Kind

// Handler kinds.
const (
	KindText     = runtime.KindText
	KindMark     = runtime.KindMark
	KindBlock    = runtime.KindBlock
	KindLeafNode = runtime.KindLeafNode
	KindList     = runtime.KindList
)

// Walker converts a document one top-level block at a time.
type Walker = runtime.Walker

// DefaultHandlerTable returns a fresh copy of the table for the basic schema.
func DefaultHandlerTable() HandlerTable { return runtime.DefaultTable() }

// DefaultLockTTL bounds how long a replica may hold the conversion lock.
const DefaultLockTTL = 30 * time.Second

// Converter is the high-level entry point for the panmirror library.
// It wraps the conversion runtime together with the optional AST source, document
// cache and distributed lock around it. A Converter is safe for concurrent use;
// every conversion runs on its own state.
type Converter struct {
	engine  *runtime.Engine
	schema  *schema.Schema
	table   HandlerTable
	policy  domain.MismatchPolicy
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	source  ports.ASTSource
	store   ports.DocumentStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	format  string
	digest  []byte
}

// Option defines a functional option for configuring the Converter.
type Option func(*Converter)

// WithSchema sets the target schema (default: schema.Basic()).
func WithSchema(s *schema.Schema) Option {
	return func(c *Converter) {
		c.schema = s
	}
}

// WithHandlerTable replaces the handler table. It is checked against the schema in New.
func WithHandlerTable(t HandlerTable) Option {
	return func(c *Converter) {
		c.table = t
	}
}

// WithMismatchPolicy selects what happens when a node cannot be built.
func WithMismatchPolicy(p domain.MismatchPolicy) Option {
	return func(c *Converter) {
		c.policy = p
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Converter) {
		c.hooks = hooks
	}
}

// WithASTSource sets where ConvertMarkdown obtains pandoc JSON from.
func WithASTSource(src ports.ASTSource) Option {
	return func(c *Converter) {
		c.source = src
	}
}

// WithDocumentStore enables caching of converted documents.
func WithDocumentStore(store ports.DocumentStore) Option {
	return func(c *Converter) {
		c.store = store
	}
}

// WithLocker serializes identical conversions across replicas sharing a store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(c *Converter) {
		c.locker = locker
		c.lockTTL = ttl
	}
}

// WithFormat sets the pandoc reader used by ConvertMarkdown (default: commonmark).
func WithFormat(format string) Option {
	return func(c *Converter) {
		c.format = format
	}
}

// New builds a Converter.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		format:  ports.DefaultFormat,
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.schema == nil {
		c.schema = schema.Basic()
	}
	if c.table == nil {
		c.table = runtime.DefaultTable()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.lockTTL <= 0 {
		c.lockTTL = DefaultLockTTL
	}

	engine, err := runtime.NewEngine(c.schema,
		runtime.WithTable(c.table),
		runtime.WithMismatchPolicy(c.policy),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithLogger(c.logger),
	)
	if err != nil {
		return nil, err
	}
	c.engine = engine

	// Cached documents are only valid for the schema and policy that built them.
	spec, err := c.schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("fingerprint schema: %w", err)
	}
	h := blake3.New()
	_, _ = h.Write(spec)
	_, _ = h.Write([]byte(c.policy.String()))
	c.digest = h.Sum(nil)

	return c, nil
}

// Schema returns the target schema.
func (c *Converter) Schema() *schema.Schema { return c.schema }

// Format returns the pandoc reader used by ConvertMarkdown.
func (c *Converter) Format() string { return c.format }

// EmptyDoc returns the smallest valid document.
func (c *Converter) EmptyDoc() (*schema.Node, error) { return c.schema.EmptyDoc() }

// Convert turns a decoded pandoc document into a schema-valid document.
func (c *Converter) Convert(ctx context.Context, doc *pandoc.Document) (*schema.Node, error) {
	return c.engine.Convert(ctx, doc)
}

// Walk prepares a step-wise conversion of doc.
func (c *Converter) Walk(ctx context.Context, doc *pandoc.Document) *Walker {
	return c.engine.Walk(ctx, doc)
}

// ConvertJSON decodes pandoc JSON and converts it.
func (c *Converter) ConvertJSON(ctx context.Context, data []byte) (*schema.Node, error) {
	doc, err := pandoc.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, doc)
}

// CacheKey is the store key for markdown read with format.
func (c *Converter) CacheKey(format, markdown string) string {
	h := blake3.New()
	_, _ = h.Write(c.digest)
	_, _ = h.Write([]byte(format))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(markdown))
	return hex.EncodeToString(h.Sum(nil))
}

// ConvertMarkdown obtains the AST for markdown from the configured source and
// converts it. With a DocumentStore, results are cached; with a locker, replicas
// wait for each other instead of converting the same source twice.
func (c *Converter) ConvertMarkdown(ctx context.Context, markdown string) (*schema.Node, error) {
	return c.ConvertMarkdownAs(ctx, c.format, markdown)
}

// ConvertMarkdownAs is ConvertMarkdown with an explicit pandoc reader. An empty
// format selects the converter's default.
func (c *Converter) ConvertMarkdownAs(ctx context.Context, format, markdown string) (*schema.Node, error) {
	if format == "" {
		format = c.format
	}
	if c.source == nil {
		return nil, fmt.Errorf("%w: no source configured", domain.ErrSourceUnavailable)
	}
	if c.store == nil {
		return c.fetchAndConvert(ctx, format, markdown)
	}

	key := c.CacheKey(format, markdown)
	if doc, ok := c.cached(ctx, key); ok {
		return doc, nil
	}

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, key, c.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock conversion: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn("failed to release conversion lock", "key", key, "err", err)
			}
		}()
		if doc, ok := c.cached(ctx, key); ok {
			return doc, nil
		}
	}

	doc, err := c.fetchAndConvert(ctx, format, markdown)
	if err != nil {
		return nil, err
	}

	data, err := doc.MarshalJSON()
	if err == nil {
		err = c.store.Save(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("failed to cache document", "key", key, "err", err)
	}
	return doc, nil
}

// FetchAST returns the raw pandoc JSON for markdown read with format, or with the
// default format when it is empty.
func (c *Converter) FetchAST(ctx context.Context, format, markdown string) ([]byte, error) {
	if c.source == nil {
		return nil, fmt.Errorf("%w: no source configured", domain.ErrSourceUnavailable)
	}
	if format == "" {
		format = c.format
	}
	return c.source.FetchAST(ctx, ports.ASTRequest{Format: format, Markdown: markdown})
}

func (c *Converter) fetchAndConvert(ctx context.Context, format, markdown string) (*schema.Node, error) {
	ast, err := c.FetchAST(ctx, format, markdown)
	if err != nil {
		return nil, err
	}
	doc, err := pandoc.Decode(bytes.NewReader(ast))
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, doc)
}

// cached loads key from the store. Unreadable entries are treated as misses.
func (c *Converter) cached(ctx context.Context, key string) (*schema.Node, bool) {
	data, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			c.logger.Warn("document cache unavailable", "key", key, "err", err)
		}
		return nil, false
	}
	doc, err := c.schema.NodeFromJSON(data)
	if err != nil {
		c.logger.Warn("discarding invalid cached document", "key", key, "err", err)
		return nil, false
	}
	c.logger.Debug("document cache hit", "key", key)
	return doc, true
}
