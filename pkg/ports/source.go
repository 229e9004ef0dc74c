package ports

import "context"

// DefaultFormat is the pandoc reader used when a request does not name one.
const DefaultFormat = "commonmark"

// ASTRequest asks an ASTSource to parse markdown.
type ASTRequest struct {
	// Format is a pandoc reader name such as "commonmark" or "markdown".
	Format   string `json:"format"`
	Markdown string `json:"markdown"`
}

// FormatOrDefault returns the requested format, falling back to DefaultFormat.
func (r ASTRequest) FormatOrDefault() string {
	if r.Format == "" {
		return DefaultFormat
	}
	return r.Format
}

// ASTSource produces the pandoc JSON AST for a markdown source.
// Implementations must honour ctx cancellation; it is the only blocking step of
// a conversion.
type ASTSource interface {
	// FetchAST returns the raw pandoc JSON document.
	// Failures to reach the backend should wrap domain.ErrSourceUnavailable,
	// rejected formats domain.ErrInvalidFormat and failed runs domain.ErrSourceFailed.
	FetchAST(ctx context.Context, req ASTRequest) ([]byte, error)
}
