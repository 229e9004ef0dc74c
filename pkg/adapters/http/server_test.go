package http_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/panmirror"
	adapter "github.com/aretw0/panmirror/pkg/adapters/http"
	"github.com/aretw0/panmirror/pkg/adapters/memory"
	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/dsl"
	"github.com/aretw0/panmirror/pkg/ports"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConverter(t *testing.T) (*panmirror.Converter, *memory.Source) {
	t.Helper()
	ast, err := dsl.New().Heading(1, dsl.Words("Hello world")...).JSON()
	require.NoError(t, err)
	src := memory.NewSource(map[string][]byte{"# Hello world": ast})
	conv, err := panmirror.New(panmirror.WithASTSource(src))
	require.NoError(t, err)
	return conv, src
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndInfo(t *testing.T) {
	conv, _ := newConverter(t)
	h := adapter.NewHandler(conv)

	rr := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = do(t, h, http.MethodGet, "/info", "")
	var info map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "panmirror", info["app"])
	assert.Equal(t, panmirror.Version, info["version"])

	rr = do(t, h, http.MethodOptions, "/convert", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code, "metrics are only mounted on request")
}

func TestGetSchema(t *testing.T) {
	conv, _ := newConverter(t)
	rr := do(t, adapter.NewHandler(conv), http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Top   string `json:"top"`
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "doc", body.Top)
	assert.NotEmpty(t, body.Nodes)
}

func TestPandocAST(t *testing.T) {
	conv, src := newConverter(t)
	h := adapter.NewHandler(conv)

	rr := do(t, h, http.MethodPost, "/pandoc/ast", `{"format":"commonmark","markdown":"# Hello world"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body adapter.ASTResponseBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, string(body.AST), `"t":"Header"`)
	assert.Equal(t, 1, src.Calls())

	rr = do(t, h, http.MethodPost, "/pandoc/ast", `{"markdown":"unknown"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, h, http.MethodPost, "/pandoc/ast", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type sourceFunc func(ctx context.Context, req ports.ASTRequest) ([]byte, error)

func (f sourceFunc) FetchAST(ctx context.Context, req ports.ASTRequest) ([]byte, error) {
	return f(ctx, req)
}

func TestSourceErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		is     error
	}{
		{"invalid format", fmt.Errorf("%w: \"-o\"", domain.ErrInvalidFormat), http.StatusBadRequest, domain.ErrInvalidFormat},
		{"pandoc exit", fmt.Errorf("%w: exit status 64", domain.ErrSourceFailed), http.StatusBadGateway, domain.ErrSourceFailed},
		{"unavailable", domain.ErrSourceUnavailable, http.StatusServiceUnavailable, domain.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sourceFunc(func(context.Context, ports.ASTRequest) ([]byte, error) { return nil, tt.err })
			conv, err := panmirror.New(panmirror.WithASTSource(src))
			require.NoError(t, err)
			h := adapter.NewHandler(conv)

			assert.Equal(t, tt.status, do(t, h, http.MethodPost, "/pandoc/ast", `{"markdown":"x"}`).Code)
			assert.Equal(t, tt.status, do(t, h, http.MethodPost, "/convert", `{"markdown":"x"}`).Code)

			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err = adapter.NewClient(srv.URL).FetchAST(context.Background(), ports.ASTRequest{Markdown: "x"})
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestConvert(t *testing.T) {
	conv, _ := newConverter(t)
	h := adapter.NewHandler(conv)

	t.Run("Markdown", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/convert", `{"markdown":"# Hello world"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `{"doc":{"type":"doc","content":[
			{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Hello world"}]}
		]}}`, rr.Body.String())
	})

	t.Run("AST", func(t *testing.T) {
		ast, err := dsl.New().Rule().JSON()
		require.NoError(t, err)
		rr := do(t, h, http.MethodPost, "/convert", `{"ast":`+string(ast)+`}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `{"doc":{"type":"doc","content":[{"type":"horizontal_rule"}]}}`, rr.Body.String())
	})

	t.Run("Unknown Tag Reports Path", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/convert", `{"ast":{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[{"t":"Table","c":[]}]}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var body adapter.ErrorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "/blocks/0", body.Path)
		assert.Contains(t, body.Error, "Table")
	})

	t.Run("Requires Exactly One Input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/convert", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/convert", `{"markdown":"x","ast":{}}`).Code)
	})
}

func TestMetricsHandler(t *testing.T) {
	conv, _ := newConverter(t)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("panmirror_conversions_total 1\n"))
	})
	rr := do(t, adapter.NewHandler(conv, adapter.WithMetricsHandler(metrics)), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "panmirror_conversions_total")
}

func TestBodyLimit(t *testing.T) {
	conv, _ := newConverter(t)
	h := adapter.NewHandler(conv, adapter.WithMaxBodyBytes(16))
	rr := do(t, h, http.MethodPost, "/convert", `{"markdown":"this body is longer than sixteen bytes"}`)
	assert.GreaterOrEqual(t, rr.Code, http.StatusBadRequest)
	assert.Less(t, rr.Code, http.StatusInternalServerError)
}

func TestClient(t *testing.T) {
	conv, _ := newConverter(t)
	srv := httptest.NewServer(adapter.NewHandler(conv))
	defer srv.Close()

	client := adapter.NewClient(srv.URL + "/")
	ctx := context.Background()

	t.Run("Fetches AST", func(t *testing.T) {
		ast, err := client.FetchAST(ctx, ports.ASTRequest{Markdown: "# Hello world"})
		require.NoError(t, err)
		assert.Contains(t, string(ast), `"t":"Header"`)
	})

	t.Run("Works As Converter Source", func(t *testing.T) {
		remote, err := panmirror.New(panmirror.WithASTSource(client))
		require.NoError(t, err)
		doc, err := remote.ConvertMarkdown(ctx, "# Hello world")
		require.NoError(t, err)
		assert.Equal(t, `doc(heading("Hello world"))`, doc.String())
	})

	t.Run("Service Unavailable", func(t *testing.T) {
		_, err := client.FetchAST(ctx, ports.ASTRequest{Markdown: "nothing registered"})
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("Unreachable", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()
		_, err := adapter.NewClient(url).FetchAST(ctx, ports.ASTRequest{Markdown: "x"})
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("Other Status", func(t *testing.T) {
		notFound := httptest.NewServer(http.NotFoundHandler())
		defer notFound.Close()
		_, err := adapter.NewClient(notFound.URL).FetchAST(ctx, ports.ASTRequest{Markdown: "x"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})
}
