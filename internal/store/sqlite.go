// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// Responsibilities:
//   - Row mapping between the users/sentences/matches tables and the domain
//     types (unix-second timestamps, '0'/'1' mask strings, NULL user_id for
//     guest matches).
//   - Atomic match+balance writes: SaveMatchAndAdjustCoins reads the current
//     balance, applies the delta, and writes both rows in one transaction, so
//     a guess can never debit coins without recording the guess and two
//     interleaved guesses can never lose a debit.
//
// The *sql.DB handed in is expected to be opened with _txlock=immediate (see
// openDB in package main) so read-modify-write transactions on the same match
// serialize instead of failing with SQLITE_BUSY.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guessentence/go-server/internal/game"
)

// SQLite is the production Store backed by a mattn/go-sqlite3 database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an opened, migrated database handle.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// RandomSentence picks uniformly from the pool matching the guest flag.
func (s *SQLite) RandomSentence(ctx context.Context, guestPool bool) (*game.Sentence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, is_guest FROM sentences WHERE is_guest=? ORDER BY RANDOM() LIMIT 1`,
		boolInt(guestPool))
	sent, err := scanSentence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNoSentences
	}
	return sent, err
}

// Sentence looks up a sentence by id.
func (s *SQLite) Sentence(ctx context.Context, id string) (*game.Sentence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, is_guest FROM sentences WHERE id=?`, id)
	sent, err := scanSentence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSentenceNotFound
	}
	return sent, err
}

// AddSentence inserts into the pool, uppercasing the text.
func (s *SQLite) AddSentence(ctx context.Context, sent *game.Sentence) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sentences (id, text, is_guest) VALUES (?,?,?)`,
		sent.ID, strings.ToUpper(sent.Text), boolInt(sent.Guest))
	return err
}

// CountSentences reports the pool size, used to decide whether to seed.
func (s *SQLite) CountSentences(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sentences`).Scan(&n)
	return n, err
}

// CreateMatch inserts a new match row.
func (s *SQLite) CreateMatch(ctx context.Context, m *game.Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches
		    (id, user_id, sentence_id, started_at, ends_at, status, revealed_mask, guessed_letters, used_vowel)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		m.ID, nullStr(m.UserID), m.SentenceID,
		m.StartedAt.Unix(), m.EndsAt.Unix(), string(m.Status),
		m.Mask, m.Guessed, boolInt(m.UsedVowel))
	return err
}

// Match looks up a match by id.
func (s *SQLite) Match(ctx context.Context, id string) (*game.Match, error) {
	row := s.db.QueryRowContext(ctx, matchSelect+` WHERE id=?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrMatchNotFound
	}
	return m, err
}

// LatestMatch returns the owner's newest match that is still playing or
// terminal with started_at after cutoff. Guest owners map to NULL user_id.
func (s *SQLite) LatestMatch(ctx context.Context, owner game.Owner, cutoff time.Time) (*game.Match, error) {
	row := s.db.QueryRowContext(ctx, matchSelect+`
		WHERE user_id IS ?
		  AND (status='playing' OR (status IN ('won','lost') AND started_at > ?))
		ORDER BY started_at DESC LIMIT 1`,
		nullStr(owner.UserID()), cutoff.Unix())
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrMatchNotFound
	}
	return m, err
}

// SaveMatch overwrites the mutable match columns.
func (s *SQLite) SaveMatch(ctx context.Context, m *game.Match) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE matches SET status=?, revealed_mask=?, guessed_letters=?, used_vowel=?
		WHERE id=?`,
		string(m.Status), m.Mask, m.Guessed, boolInt(m.UsedVowel), m.ID)
	return err
}

// Coins reads a user's balance.
func (s *SQLite) Coins(ctx context.Context, userID string) (int, error) {
	var coins int
	err := s.db.QueryRowContext(ctx, `SELECT coins FROM users WHERE id=?`, userID).Scan(&coins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return coins, err
}

// SaveMatchAndAdjustCoins commits the match update and the balance adjustment
// in a single transaction. The balance is read inside the transaction, so the
// delta always applies to the committed value, and the result is clamped at
// zero. The _txlock=immediate DSN option makes these transactions serialize.
func (s *SQLite) SaveMatchAndAdjustCoins(ctx context.Context, m *game.Match, userID string, delta int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var coins int
	if err := tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id=?`, userID).Scan(&coins); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	coins += delta
	if coins < 0 {
		coins = 0
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE matches SET status=?, revealed_mask=?, guessed_letters=?, used_vowel=?
		WHERE id=?`,
		string(m.Status), m.Mask, m.Guessed, boolInt(m.UsedVowel), m.ID); err != nil {
		return 0, fmt.Errorf("update match: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET coins=? WHERE id=?`, coins, userID); err != nil {
		return 0, fmt.Errorf("update coins: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return coins, nil
}

// CreateUser inserts a user. Usernames are unique case-insensitively, which
// the schema's UNIQUE constraint alone does not enforce, so an existence check
// guards the insert; the constraint still backstops the exact-case collision.
func (s *SQLite) CreateUser(ctx context.Context, u *User) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE lower(username)=lower(?)`, u.Username).Scan(&one)
	if err == nil {
		return ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check username: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, coins)
		VALUES (?,?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339), u.Coins)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrUsernameTaken
	}
	return err
}

// UserByUsername finds a user by name, case-insensitively.
func (s *SQLite) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, userSelect+` WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

// UserByID finds a user by id.
func (s *SQLite) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, userSelect+` WHERE id=?`, id)
	return scanUser(row)
}

/* ------------------------------ row mapping ------------------------------ */

const matchSelect = `
	SELECT id, user_id, sentence_id, started_at, ends_at, status,
	       revealed_mask, guessed_letters, used_vowel
	FROM matches`

const userSelect = `SELECT id, username, password_hash, created_at, coins FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*game.Match, error) {
	var (
		m         game.Match
		userID    sql.NullString
		started   int64
		ends      int64
		status    string
		usedVowel int
	)
	if err := row.Scan(&m.ID, &userID, &m.SentenceID, &started, &ends, &status,
		&m.Mask, &m.Guessed, &usedVowel); err != nil {
		return nil, err
	}
	m.UserID = userID.String
	m.StartedAt = time.Unix(started, 0)
	m.EndsAt = time.Unix(ends, 0)
	m.Status = game.Status(status)
	m.UsedVowel = usedVowel != 0
	return &m, nil
}

func scanSentence(row rowScanner) (*game.Sentence, error) {
	var (
		s     game.Sentence
		guest int
	)
	if err := row.Scan(&s.ID, &s.Text, &guest); err != nil {
		return nil, err
	}
	s.Guest = guest != 0
	return &s, nil
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.Coins); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = t
	return &u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
