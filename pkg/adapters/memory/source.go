package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/ports"
)

// Source implements ports.ASTSource with canned responses keyed by the exact
// markdown text. It is meant for tests and for embedding pre-parsed documents.
type Source struct {
	mu        sync.RWMutex
	responses map[string][]byte
	fallback  []byte
	calls     atomic.Int64
}

// NewSource creates a source answering with the given markdown -> AST pairs.
func NewSource(responses map[string][]byte) *Source {
	s := &Source{responses: make(map[string][]byte, len(responses))}
	for md, ast := range responses {
		s.responses[md] = ast
	}
	return s
}

// Add registers the AST returned for markdown.
func (s *Source) Add(markdown string, ast []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[markdown] = ast
}

// SetFallback sets the AST returned for markdown with no registered response.
func (s *Source) SetFallback(ast []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = ast
}

// Calls reports how many times FetchAST was invoked.
func (s *Source) Calls() int { return int(s.calls.Load()) }

// FetchAST returns the registered AST for req.Markdown.
func (s *Source) FetchAST(ctx context.Context, req ports.ASTRequest) ([]byte, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if ast, ok := s.responses[req.Markdown]; ok {
		return ast, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return nil, fmt.Errorf("%w: no response registered for %d bytes of %s", domain.ErrSourceUnavailable, len(req.Markdown), req.FormatOrDefault())
}
