// internal/game/types.go
//
// Core type definitions for the guess-the-sentence engine.
// Defines:
//   - Status: match lifecycle state (playing/won/lost/abandoned).
//   - Owner: the actor a match belongs to (authenticated user or guest).
//   - Sentence: an immutable solution from the pool.
//   - Match: state for a single timed round.

package game

import "time"

// Status represents the lifecycle state of a match.
// playing is the only non-terminal state; transitions are monotonic.
type Status string

const (
	StatusPlaying   Status = "playing"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s != StatusPlaying }

// Owner identifies the actor a match belongs to. The zero value is a guest.
type Owner struct {
	userID string
}

// Authenticated returns an Owner for a logged-in user.
func Authenticated(userID string) Owner { return Owner{userID: userID} }

// Guest is the ownerless actor.
var Guest = Owner{}

// IsGuest reports whether the owner has no user identity.
func (o Owner) IsGuest() bool { return o.userID == "" }

// UserID returns the user identifier, or "" for a guest.
func (o Owner) UserID() string { return o.userID }

// Sentence is a solution from the pool. Text is uppercase-normalized at seed
// time and never mutated.
type Sentence struct {
	ID    string
	Text  string
	Guest bool // eligible for guest matches
}

// Match holds the state of a single timed round.
type Match struct {
	ID         string
	UserID     string // "" for guest matches
	SentenceID string
	StartedAt  time.Time
	EndsAt     time.Time
	Status     Status
	Mask       string // one '0'/'1' per sentence position; spaces always '1'
	Guessed    string // deduplicated uppercase letters in guess order
	UsedVowel  bool
}

// Owner returns the match owner as an Owner value.
func (m *Match) Owner() Owner { return Owner{userID: m.UserID} }

// OwnedBy reports whether the match belongs to o. Guest actors own exactly
// the ownerless matches.
func (m *Match) OwnedBy(o Owner) bool { return m.UserID == o.userID }
