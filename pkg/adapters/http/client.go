package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/ports"
	"github.com/goccy/go-json"
)

// Client implements ports.ASTSource against a remote POST /pandoc/ast endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAST posts req and returns the "ast" member of the response.
func (c *Client) FetchAST(ctx context.Context, req ports.ASTRequest) ([]byte, error) {
	payload, err := json.Marshal(ASTRequestBody{Format: req.FormatOrDefault(), Markdown: req.Markdown})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pandoc/ast", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var body ErrorBody
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		switch resp.StatusCode {
		case http.StatusServiceUnavailable:
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, msg)
		case http.StatusBadGateway:
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceFailed, msg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFormat, msg)
		}
		return nil, fmt.Errorf("pandoc service returned %d: %s", resp.StatusCode, msg)
	}

	var body ASTResponseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(body.AST) == 0 {
		return nil, fmt.Errorf("pandoc service response has no ast")
	}
	return body.AST, nil
}
