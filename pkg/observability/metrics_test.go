package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.OnTokenDispatch(ctx, &domain.TokenEvent{Tag: "Str"})
	hooks.OnTokenDispatch(ctx, &domain.TokenEvent{Tag: "Str"})
	hooks.OnTokenDispatch(ctx, &domain.TokenEvent{Tag: "Para"})
	hooks.OnNodeDropped(ctx, &domain.NodeEvent{NodeType: "heading"})
	hooks.OnConvertEnd(ctx, &domain.ConvertEvent{Duration: time.Millisecond})
	hooks.OnConvertEnd(ctx, &domain.ConvertEvent{Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Tokens.WithLabelValues("Str")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tokens.WithLabelValues("Para")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped.WithLabelValues("heading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"panmirror_conversions_total",
		"panmirror_conversion_duration_seconds",
		"panmirror_nodes_dropped_total",
		"panmirror_tokens_total",
	}, names)
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(nil)
	assert.NoError(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hooks := observability.LoggingHooks(logger)
	ctx := context.Background()

	hooks.OnConvertStart(ctx, &domain.ConvertEvent{Blocks: 2})
	hooks.OnTokenDispatch(ctx, &domain.TokenEvent{Tag: "Str"})
	hooks.OnNodeDropped(ctx, &domain.NodeEvent{NodeType: "heading", Path: "/blocks/0"})

	out := buf.String()
	assert.Contains(t, out, "convert_start")
	assert.Contains(t, out, "blocks=2")
	assert.NotContains(t, out, "token", "debug events are filtered")
	assert.Contains(t, out, "level=WARN msg=node_dropped type=heading path=/blocks/0")
}
