// internal/store/store.go
//
// Persistence interfaces and shared types for the guess-the-sentence server.
// Implementations in this package:
//   - Memory: map-backed, for tests and throwaway runs.
//   - SQLite: the production backend.
//
// Both satisfy game.Store (the engine's narrower view) plus the account
// operations the HTTP layer needs.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/guessentence/go-server/internal/game"
)

var (
	// ErrUserNotFound is returned for unknown user ids or usernames.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a signup collides with an existing name.
	ErrUsernameTaken = errors.New("username taken")
	// ErrSentenceNotFound is returned for unknown sentence ids.
	ErrSentenceNotFound = errors.New("sentence not found")
)

// User matches the users table shape. Coins never go below zero.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	Coins        int
}

// Store is the full persistence surface: match/sentence/balance operations
// the engine drives, plus account CRUD for the auth endpoints.
type Store interface {
	game.Store

	CreateUser(ctx context.Context, u *User) error
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
}
