// Package storage provides abstractions for holding session state between
// requests.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitbill/internal/session"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends (SQLite, Redis)
// without changing the service layer.
type Store interface {
	// Get retrieves a session by its ID.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Put creates or replaces a session. The session expires ttl after this
	// call unless it is put again.
	Put(ctx context.Context, s *session.Session, ttl time.Duration) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// Purger is implemented by stores that need expired sessions removed
// periodically.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
