package admin

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the remote admins collection.
type Repository interface {
	Configured() bool
	List(ctx context.Context) ([]Account, error)
	// Insert stores a (its ID is ignored) and returns the row as persisted.
	Insert(ctx context.Context, a Account) (Account, error)
	// FindByEmail looks up a normalised email; a miss is ErrNotFound.
	FindByEmail(ctx context.Context, email string) (Account, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, credential string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
