// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used in tests and development runs
// where durability is not required.
//
// Characteristics:
//   - Everything lives in maps keyed by id, guarded by a single mutex; a
//     mutating operation holds the lock end to end, which also gives the
//     per-match serialization the engine relies on.
//   - State is lost when the process restarts.
//   - Stored matches are copied on the way in and out so callers never share
//     a pointer with the store.

package store

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/guessentence/go-server/internal/game"
)

// Memory is a map-based Store implementation.
type Memory struct {
	mu        sync.Mutex
	sentences map[string]*game.Sentence
	matches   map[string]*game.Match
	users     map[string]*User
}

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		sentences: make(map[string]*game.Sentence),
		matches:   make(map[string]*game.Match),
		users:     make(map[string]*User),
	}
}

// AddSentence seeds the pool. Text is uppercased on the way in.
func (m *Memory) AddSentence(s *game.Sentence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.Text = strings.ToUpper(cp.Text)
	m.sentences[cp.ID] = &cp
}

// RandomSentence picks uniformly from the pool matching the guest flag.
func (m *Memory) RandomSentence(ctx context.Context, guestPool bool) (*game.Sentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pool []*game.Sentence
	for _, s := range m.sentences {
		if s.Guest == guestPool {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		return nil, game.ErrNoSentences
	}
	s := *pool[randInt(len(pool))]
	return &s, nil
}

// Sentence looks up a sentence by id.
func (m *Memory) Sentence(ctx context.Context, id string) (*game.Sentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sentences[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrSentenceNotFound
}

// CreateMatch stores a copy of the match.
func (m *Memory) CreateMatch(ctx context.Context, mt *game.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mt
	m.matches[cp.ID] = &cp
	return nil
}

// Match looks up a match by id.
func (m *Memory) Match(ctx context.Context, id string) (*game.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.matches[id]; ok {
		cp := *mt
		return &cp, nil
	}
	return nil, game.ErrMatchNotFound
}

// LatestMatch returns the owner's newest match that is playing or terminal
// with StartedAt after cutoff.
func (m *Memory) LatestMatch(ctx context.Context, owner game.Owner, cutoff time.Time) (*game.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *game.Match
	for _, mt := range m.matches {
		if mt.UserID != owner.UserID() {
			continue
		}
		if mt.Status == game.StatusAbandoned {
			continue
		}
		if mt.Status.Terminal() && !mt.StartedAt.After(cutoff) {
			continue
		}
		if latest == nil || mt.StartedAt.After(latest.StartedAt) {
			latest = mt
		}
	}
	if latest == nil {
		return nil, game.ErrMatchNotFound
	}
	cp := *latest
	return &cp, nil
}

// SaveMatch overwrites the stored match state.
func (m *Memory) SaveMatch(ctx context.Context, mt *game.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mt
	m.matches[cp.ID] = &cp
	return nil
}

// Coins reads a user's balance.
func (m *Memory) Coins(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return u.Coins, nil
}

// SaveMatchAndAdjustCoins persists the match and applies delta to the balance
// under one lock, clamping at zero. Holding the lock across the read and the
// write is what keeps concurrent debits from losing each other.
func (m *Memory) SaveMatchAndAdjustCoins(ctx context.Context, mt *game.Match, userID string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	cp := *mt
	m.matches[cp.ID] = &cp
	u.Coins += delta
	if u.Coins < 0 {
		u.Coins = 0
	}
	return u.Coins, nil
}

// CreateUser inserts a user, rejecting duplicate usernames case-insensitively.
func (m *Memory) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if strings.EqualFold(other.Username, u.Username) {
			return ErrUsernameTaken
		}
	}
	cp := *u
	m.users[cp.ID] = &cp
	return nil
}

// UserByUsername finds a user by name, case-insensitively.
func (m *Memory) UserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// UserByID finds a user by id.
func (m *Memory) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

// randInt returns a crypto-random int in [0, n).
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
