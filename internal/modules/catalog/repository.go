package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the remote products collection.
type Repository interface {
	// Configured reports whether a remote store is available at all.
	Configured() bool

	// List returns every product, newest first.
	List(ctx context.Context) ([]Product, error)

	// Find returns product id, or ErrNotFound.
	Find(ctx context.Context, id uuid.UUID) (Product, error)

	// Insert stores p (its ID is ignored) and returns the row as persisted.
	Insert(ctx context.Context, p Product) (Product, error)

	// Update overwrites the editable fields of product id and returns the row as
	// persisted, or ErrNotFound.
	Update(ctx context.Context, id uuid.UUID, d Draft, updatedAt time.Time) (Product, error)

	// Delete removes product id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
