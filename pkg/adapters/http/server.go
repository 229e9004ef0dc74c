package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 8 << 20

// Converter defines the part of panmirror.Converter served over HTTP.
type Converter interface {
	ConvertMarkdownAs(ctx context.Context, format, markdown string) (*schema.Node, error)
	ConvertJSON(ctx context.Context, data []byte) (*schema.Node, error)
	FetchAST(ctx context.Context, format, markdown string) ([]byte, error)
	Schema() *schema.Schema
}

// ASTRequestBody is the body of POST /pandoc/ast.
type ASTRequestBody struct {
	Format   string `json:"format"`
	Markdown string `json:"markdown"`
}

// ASTResponseBody is the response of POST /pandoc/ast.
type ASTResponseBody struct {
	AST json.RawMessage `json:"ast"`
}

// ConvertRequestBody is the body of POST /convert. Exactly one of Markdown and AST
// must be set.
type ConvertRequestBody struct {
	Format   string          `json:"format,omitempty"`
	Markdown *string         `json:"markdown,omitempty"`
	AST      json.RawMessage `json:"ast,omitempty"`
}

// ConvertResponseBody is the response of POST /convert.
type ConvertResponseBody struct {
	Doc *schema.Node `json:"doc"`
}

// ErrorBody is returned with every non-2xx status.
type ErrorBody struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

// Server holds the HTTP handlers.
type Server struct {
	Converter Converter
	logger    *slog.Logger
	metrics   http.Handler
	maxBody   int64
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// NewHandler creates a new HTTP handler for the converter.
func NewHandler(conv Converter, opts ...Option) http.Handler {
	s := &Server{
		Converter: conv,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Get("/info", s.Info)
	r.Get("/schema", s.GetSchema)
	r.Post("/pandoc/ast", s.PandocAST)
	r.Post("/convert", s.Convert)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "panmirror",
		"version": panmirror.Version,
	})
}

// GetSchema handles GET /schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Converter.Schema())
}

// PandocAST handles POST /pandoc/ast.
func (s *Server) PandocAST(w http.ResponseWriter, r *http.Request) {
	var body ASTRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	ast, err := s.Converter.FetchAST(r.Context(), body.Format, body.Markdown)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ASTResponseBody{AST: ast})
}

// Convert handles POST /convert.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var body ConvertRequestBody
	if !s.decode(w, r, &body) {
		return
	}

	var (
		doc *schema.Node
		err error
	)
	switch {
	case body.Markdown != nil && len(body.AST) > 0:
		s.writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "markdown and ast are mutually exclusive"})
		return
	case body.Markdown != nil:
		doc, err = s.Converter.ConvertMarkdownAs(r.Context(), body.Format, *body.Markdown)
	case len(body.AST) > 0:
		doc, err = s.Converter.ConvertJSON(r.Context(), body.AST)
	default:
		s.writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "one of markdown or ast is required"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ConvertResponseBody{Doc: doc})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: err.Error()})
			return false
		}
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps conversion errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := ErrorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var (
		unknown   *domain.UnknownTagError
		malformed *domain.MalformedTokenError
		mismatch  *domain.StructuralMismatchError
	)
	switch {
	case errors.As(err, &unknown):
		status, body.Path = http.StatusUnprocessableEntity, unknown.Path
	case errors.As(err, &malformed):
		status, body.Path = http.StatusUnprocessableEntity, malformed.Path
	case errors.As(err, &mismatch):
		status, body.Path = http.StatusUnprocessableEntity, mismatch.Path
	case errors.Is(err, domain.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSourceFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrSourceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("response encode failed", "err", err)
		http.Error(w, fmt.Sprintf("encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
