// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitcheck/internal/models"
)

// ErrNotFound is returned (wrapped) when a session or friend does not exist.
var ErrNotFound = errors.New("not found")

// JoinFunc builds the friend to insert from the locked session and the number
// of friends that joined before. Returning an error aborts the join.
type JoinFunc func(session *models.Session, joined int) (*models.Friend, error)

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateSession persists a new session.
	// The session ID and timestamps are populated by the store when empty.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by ID without its friends.
	// Returns an error wrapping ErrNotFound if it does not exist.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteSession removes a session with all its friends and products.
	DeleteSession(ctx context.Context, sessionID string) error

	// AddFriend appends a friend to a session. The session row is read, the
	// existing friends counted, build invoked and the friend inserted inside a
	// single transaction, so concurrent joins to one session are serialized.
	AddFriend(ctx context.Context, sessionID string, build JoinFunc) (*models.Friend, error)

	// ListFriends returns a session's friends in join order, products included.
	ListFriends(ctx context.Context, sessionID string) ([]models.Friend, error)

	// SetFriendPaid sets a friend's payment flag. Setting the current value
	// again is not an error.
	SetFriendPaid(ctx context.Context, sessionID, friendID string, hasPaid bool) error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
