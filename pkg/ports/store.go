package ports

import "context"

// DocumentStore persists converted documents as ProseMirror JSON.
type DocumentStore interface {
	// Save stores doc under key, replacing any previous value.
	Save(ctx context.Context, key string, doc []byte) error

	// Load retrieves the document stored under key.
	// Returns domain.ErrDocumentNotFound if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the document stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
