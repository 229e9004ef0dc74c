package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/internal/logging"
	"github.com/aretw0/panmirror/pkg/adapters/memory"
	"github.com/aretw0/panmirror/pkg/dsl"
	"github.com/aretw0/panmirror/pkg/runner"
)

type staticInputs struct {
	inputs  []runner.Input
	changes chan string
}

func (s *staticInputs) Inputs(context.Context) ([]runner.Input, error) { return s.inputs, nil }

func (s *staticInputs) Watch(context.Context) (<-chan string, error) { return s.changes, nil }

func newBatchFixture(t *testing.T) (*panmirror.Converter, *staticInputs) {
	t.Helper()
	src := memory.NewSource(nil)
	ast, err := dsl.New().Text("hello").JSON()
	require.NoError(t, err)
	src.Add("hello", ast)

	conv, err := panmirror.New(panmirror.WithASTSource(src))
	require.NoError(t, err)

	return conv, &staticInputs{inputs: []runner.Input{
		{Name: "notes/hello", Markdown: "hello"},
		{Name: "broken", Markdown: "not registered"},
	}}
}

func TestRunBatch_NDJSON(t *testing.T) {
	conv, src := newBatchFixture(t)
	var out bytes.Buffer

	err := RunBatch(context.Background(), conv, src, BatchOptions{}, &out, logging.NewNop())
	assert.ErrorIs(t, err, ErrBatchFailed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"name":"notes/hello","doc":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}}`, lines[0])
	assert.Contains(t, lines[1], `"name":"broken"`)
	assert.Contains(t, lines[1], `"error":`)
}

func TestRunBatch_OutDir(t *testing.T) {
	conv, src := newBatchFixture(t)
	src.inputs = src.inputs[:1]
	outDir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, RunBatch(context.Background(), conv, src, BatchOptions{OutDir: outDir, Pretty: true}, &out, logging.NewNop()))

	data, err := os.ReadFile(filepath.Join(outDir, "notes", "hello.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`, string(data))
	assert.Contains(t, out.String(), "ok   notes/hello")
}

func TestWatchBatch_RerunsOnChange(t *testing.T) {
	conv, src := newBatchFixture(t)
	src.inputs = src.inputs[:1]
	src.changes = make(chan string, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- WatchBatch(ctx, conv, src, BatchOptions{}, &out, logging.NewNop()) }()

	require.Eventually(t, func() bool { return strings.Count(out.String(), "Waiting for changes") == 1 }, 2*time.Second, 10*time.Millisecond)
	src.changes <- "hello"
	require.Eventually(t, func() bool { return strings.Count(out.String(), "Waiting for changes") == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "Change detected in 'hello'.")

	cancel()
	assert.NoError(t, <-done)
}
