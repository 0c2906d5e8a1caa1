package store

import (
	"context"
	"errors"

	"github.com/cynit/hub/internal/hub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Vault() Vault

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Vault stores private JWKs keyed by kid. Implementations persist the JWK
// field exactly as given; encryption happens a layer above.
type Vault interface {
	// Put inserts a new entry. A duplicate kid is ErrAlreadyExists.
	Put(ctx context.Context, e domain.VaultEntry) error

	// Get returns the entry for a kid, including its JWK bytes.
	Get(ctx context.Context, kid string) (domain.VaultEntry, error)

	// List returns all entries without their JWK bytes, ordered by kid.
	List(ctx context.Context) ([]domain.VaultEntry, error)

	// Delete removes an entry. A missing kid is ErrNotFound.
	Delete(ctx context.Context, kid string) error
}
