// Package store provides the profile storage interface and its implementations.
// The in-memory store serves local development and tests; PostgreSQL backs
// production deployments.
package store

import (
	"context"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ProfileStore persists one Profile row per authenticated user.
// All handler code depends on this interface, making it easy to swap
// between in-memory (tests) and PostgreSQL (production) implementations.
type ProfileStore interface {
	// GetProfile returns the profile keyed by the auth provider's user id,
	// or *ErrNotFound.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// UpsertProfile creates or replaces the profile for p.UserID.
	// CreatedAt is preserved across updates; UpdatedAt is set by the store.
	UpsertProfile(ctx context.Context, p *models.Profile) error

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
