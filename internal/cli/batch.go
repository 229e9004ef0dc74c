package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/panmirror/pkg/runner"
)

// InputSource lists the documents of a batch.
type InputSource interface {
	Inputs(ctx context.Context) ([]runner.Input, error)
}

// WatchableSource is an InputSource that can report changes.
type WatchableSource interface {
	InputSource
	Watch(ctx context.Context) (<-chan string, error)
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// OutDir receives one <name>.json per document. When empty, results are
	// written to the output writer as NDJSON.
	OutDir      string
	Concurrency int
	FailFast    bool
	Pretty      bool
}

// ErrBatchFailed is returned when at least one document could not be converted.
var ErrBatchFailed = errors.New("batch finished with failures")

type batchLine struct {
	Name  string `json:"name"`
	Doc   any    `json:"doc,omitempty"`
	Error string `json:"error,omitempty"`
}

// RunBatch converts every input of src once.
func RunBatch(ctx context.Context, conv runner.Converter, src InputSource, opts BatchOptions, out io.Writer, logger *slog.Logger) error {
	inputs, err := src.Inputs(ctx)
	if err != nil {
		return err
	}

	r := runner.New(conv,
		runner.WithConcurrency(opts.Concurrency),
		runner.WithFailFast(opts.FailFast),
		runner.WithLogger(logger),
	)
	SetStep(ctx, "converting %d documents", len(inputs))
	start := time.Now()
	results, err := r.Run(ctx, inputs)
	if err != nil {
		return err
	}

	SetStep(ctx, "writing %d results", len(results))
	for _, res := range results {
		if err := writeResult(res, opts, out); err != nil {
			return err
		}
	}

	failed := runner.Failed(results)
	logger.Info("Batch finished", "documents", len(results), "failed", len(failed), "duration", time.Since(start))
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, len(failed), len(results))
	}
	return nil
}

func writeResult(res runner.Result, opts BatchOptions, out io.Writer) error {
	if opts.OutDir == "" {
		line := batchLine{Name: res.Name}
		if res.Err != nil {
			line.Error = res.Err.Error()
		} else {
			line.Doc = res.Doc
		}
		return WriteJSON(out, line, false)
	}

	if res.Err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", res.Name, res.Err)
		return nil
	}
	path := filepath.Join(opts.OutDir, filepath.FromSlash(res.Name)+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := WriteJSON(f, res.Doc, opts.Pretty); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "ok   %s -> %s\n", res.Name, path)
	return nil
}

// WatchBatch runs the batch, then again after every change, until ctx is done.
// Conversion failures are reported and do not stop the watcher.
func WatchBatch(ctx context.Context, conv runner.Converter, src WatchableSource, opts BatchOptions, out io.Writer, logger *slog.Logger) error {
	changes, err := src.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		if err := RunBatch(ctx, conv, src, opts, out, logger); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("Batch failed", "err", err)
		}
		PrintSystemMessage(out, "Waiting for changes...")
		SetStep(ctx, "waiting for changes")

		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			PrintSystemMessage(out, "Change detected in '%s'.", id)
			SetStep(ctx, "settling changes after '%s'", id)
			// Let the file system settle and coalesce bursts of events.
			if !drain(ctx, changes, 100*time.Millisecond) {
				return nil
			}
		}
	}
}

func drain(ctx context.Context, ch <-chan string, quiet time.Duration) bool {
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-ch:
			if !ok {
				return true
			}
			timer.Reset(quiet)
		case <-timer.C:
			return true
		}
	}
}
