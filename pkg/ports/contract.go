package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/panmirror/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	key := fmt.Sprintf("contract-%d", time.Now().UnixNano())
	doc := []byte(`{"type":"doc","content":[{"type":"paragraph"}]}`)

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, doc))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(loaded))
	})

	t.Run("Overwrite", func(t *testing.T) {
		other := []byte(`{"type":"doc","content":[{"type":"horizontal_rule"}]}`)
		require.NoError(t, store.Save(ctx, key, other))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, string(other), string(loaded))
	})

	t.Run("Isolation", func(t *testing.T) {
		buf := append([]byte(nil), doc...)
		require.NoError(t, store.Save(ctx, key+"-copy", buf))
		buf[0] = 'x'

		loaded, err := store.Load(ctx, key+"-copy")
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(loaded), "stores must not alias the caller's buffer")
		_ = store.Delete(ctx, key+"-copy")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, doc))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})
}
