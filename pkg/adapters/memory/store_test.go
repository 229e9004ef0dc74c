package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/panmirror/pkg/adapters/memory"
	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/aretw0/panmirror/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDocumentStoreContract(t, store)
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := memory.NewSource(map[string][]byte{"# hi": []byte(`{"blocks":[]}`)})

	ast, err := src.FetchAST(ctx, ports.ASTRequest{Markdown: "# hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"blocks":[]}`, string(ast))

	_, err = src.FetchAST(ctx, ports.ASTRequest{Markdown: "other"})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	src.SetFallback([]byte(`{}`))
	ast, err = src.FetchAST(ctx, ports.ASTRequest{Markdown: "other"})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(ast))
	assert.Equal(t, 3, src.Calls())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.FetchAST(cancelled, ports.ASTRequest{Markdown: "# hi"})
	assert.ErrorIs(t, err, context.Canceled)
}
