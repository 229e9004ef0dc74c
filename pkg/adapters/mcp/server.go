package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/pkg/schema"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemaURI is the resource describing the target document schema.
const SchemaURI = "panmirror://schema"

// Converter defines the part of panmirror.Converter exposed to MCP clients.
type Converter interface {
	ConvertMarkdownAs(ctx context.Context, format, markdown string) (*schema.Node, error)
	ConvertJSON(ctx context.Context, data []byte) (*schema.Node, error)
	Schema() *schema.Schema
}

// Server wraps the converter and exposes it as an MCP Server.
type Server struct {
	conv      Converter
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(conv Converter) *Server {
	s := &Server{
		conv:      conv,
		mcpServer: server.NewMCPServer("panmirror-mcp", strings.TrimSpace(panmirror.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: convert_markdown
	s.mcpServer.AddTool(mcp.NewTool("convert_markdown",
		mcp.WithDescription("Parse markdown with pandoc and return the document as ProseMirror JSON."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source")),
		mcp.WithString("format", mcp.Description("Pandoc reader name (default: commonmark)")),
	), s.handleConvertMarkdown)

	// TOOL: convert_ast
	s.mcpServer.AddTool(mcp.NewTool("convert_ast",
		mcp.WithDescription("Convert a pandoc JSON AST into ProseMirror JSON."),
		mcp.WithString("ast", mcp.Required(), mcp.Description("Pandoc JSON document, as produced by `pandoc -t json`")),
	), s.handleConvertAST)
}

func (s *Server) handleConvertMarkdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := request.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.conv.ConvertMarkdownAs(ctx, request.GetString("format", ""), markdown)
	return docResult(doc, err)
}

func (s *Server) handleConvertAST(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ast, err := request.RequireString("ast")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.conv.ConvertJSON(ctx, []byte(ast))
	return docResult(doc, err)
}

// docResult reports conversion failures as tool errors so the model can react to them.
func docResult(doc *schema.Node, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", err)), nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: panmirror://schema
	s.mcpServer.AddResource(mcp.NewResource(SchemaURI, "Target Document Schema",
		mcp.WithResourceDescription("Node and mark types every converted document conforms to."),
		mcp.WithMIMEType("application/json"),
	), s.readSchema)
}

func (s *Server) readSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.conv.Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemaURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
