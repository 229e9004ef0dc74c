package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/aretw0/panmirror/pkg/schema"
	"golang.org/x/sync/errgroup"
)

// Converter is the part of panmirror.Converter the runner needs.
type Converter interface {
	ConvertMarkdownAs(ctx context.Context, format, markdown string) (*schema.Node, error)
	ConvertJSON(ctx context.Context, data []byte) (*schema.Node, error)
}

// Input is one document to convert. When AST is set it is used as pandoc JSON and
// Markdown is ignored.
type Input struct {
	Name     string
	Format   string
	Markdown string
	AST      []byte
}

// Result is the outcome for the Input with the same index.
type Result struct {
	Name     string
	Doc      *schema.Node
	Err      error
	Duration time.Duration
}

// Runner converts batches of inputs with bounded concurrency.
type Runner struct {
	conv        Converter
	concurrency int
	failFast    bool
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of simultaneous conversions (default: GOMAXPROCS).
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithFailFast stops scheduling new inputs after the first failure and makes Run
// return that error.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner around conv.
func New(conv Converter, opts ...Option) *Runner {
	r := &Runner{
		conv:        conv,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r
}

// Run converts every input. Per-input failures are reported in Result.Err; Run
// itself only fails when ctx is cancelled or, with WithFailFast, on the first
// failing input. Inputs that were never started carry the cancellation error.
func (r *Runner) Run(ctx context.Context, inputs []Input) ([]Result, error) {
	results := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, in := range inputs {
		results[i].Name = in.Name
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			doc, err := r.convert(gctx, in)
			results[i].Doc = doc
			results[i].Err = err
			results[i].Duration = time.Since(start)

			if err != nil {
				r.logger.Debug("conversion failed", "name", in.Name, "err", err)
				if r.failFast {
					return fmt.Errorf("%s: %w", in.Name, err)
				}
				return nil
			}
			r.logger.Debug("converted", "name", in.Name, "duration", results[i].Duration)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (r *Runner) convert(ctx context.Context, in Input) (*schema.Node, error) {
	if in.AST != nil {
		return r.conv.ConvertJSON(ctx, in.AST)
	}
	return r.conv.ConvertMarkdownAs(ctx, in.Format, in.Markdown)
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}
