// internal/game/engine.go
//
// Match lifecycle engine for the guess-the-sentence game.
// Responsibilities:
//   - Create matches against the sentence pool (authenticated or guest mode).
//   - Process letter guesses: pricing, double cost on miss, the one-vowel
//     budget, reveal updates, and the win check.
//   - Process full-sentence guesses (free, all-or-nothing).
//   - Abandon matches without leaking the solution.
//   - Reconcile expired matches lazily at the top of every operation; nothing
//     runs on a timer server-side.
//
// Coin rules (authenticated owners only; guests are never charged or paid):
//   - A letter guess is rejected outright when the balance is below the base
//     cost. Past that gate the deduction is clamped to the remaining balance,
//     so the balance never goes negative.
//   - Timing out costs min(TimeoutPenalty, balance).
//   - Winning pays WinBonus on top of any debit applied in the same call.
//
// The engine owns no persistence: it drives a Store. Coin movements are
// expressed as deltas and applied by SaveMatchAndAdjustCoins, which reads the
// current balance and writes the new one inside the same transaction as the
// match mutation, so concurrent guesses on one match cannot lose a debit.

package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guessentence/go-server/internal/letters"
)

// Store is the persistence surface the engine drives. The sqlite and memory
// implementations live in internal/store.
type Store interface {
	// RandomSentence picks uniformly from the pool matching the guest flag.
	// Returns ErrNoSentences when the pool is empty.
	RandomSentence(ctx context.Context, guestPool bool) (*Sentence, error)
	Sentence(ctx context.Context, id string) (*Sentence, error)

	CreateMatch(ctx context.Context, m *Match) error
	// Match returns ErrMatchNotFound for unknown ids.
	Match(ctx context.Context, id string) (*Match, error)
	// LatestMatch returns the newest match for the owner that is still playing
	// or whose status is terminal with StartedAt after cutoff.
	LatestMatch(ctx context.Context, owner Owner, cutoff time.Time) (*Match, error)
	SaveMatch(ctx context.Context, m *Match) error

	Coins(ctx context.Context, userID string) (int, error)
	// SaveMatchAndAdjustCoins persists the match and applies delta to the
	// user's balance in one atomic step. The balance is read, adjusted, and
	// written inside the same transaction as the match update, clamped so it
	// never goes below zero. Returns the resulting balance.
	SaveMatchAndAdjustCoins(ctx context.Context, m *Match, userID string, delta int) (int, error)
}

// Config carries the tunable economy and timing constants.
type Config struct {
	MatchDuration  time.Duration // how long a match stays open
	TimeoutPenalty int           // coins lost when the clock runs out
	WinBonus       int           // coins awarded for a win
	GraceWindow    time.Duration // how long a finished match stays visible
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		MatchDuration:  60 * time.Second,
		TimeoutPenalty: 20,
		WinBonus:       100,
		GraceWindow:    5 * time.Minute,
	}
}

// Engine orchestrates match state transitions over a Store.
type Engine struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewEngine constructs an Engine using the wall clock.
func NewEngine(st Store, cfg Config) *Engine {
	return &Engine{store: st, cfg: cfg, now: time.Now}
}

// SetClock overrides the time source. Used by tests to drive expiry.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Result is the outcome of a mutating operation: the safe projection plus a
// player-facing message explaining what happened.
type Result struct {
	Match   *SafeMatch `json:"match"`
	Message string     `json:"message"`
}

// Start creates a new match for the owner. Guests draw from the guest
// sentence pool; no coins move at start.
func (e *Engine) Start(ctx context.Context, owner Owner) (*SafeMatch, error) {
	sent, err := e.store.RandomSentence(ctx, owner.IsGuest())
	if err != nil {
		return nil, err
	}
	text := strings.ToUpper(sent.Text)
	now := e.now()
	m := &Match{
		ID:         uuid.NewString(),
		UserID:     owner.UserID(),
		SentenceID: sent.ID,
		StartedAt:  now,
		EndsAt:     now.Add(e.cfg.MatchDuration),
		Status:     StatusPlaying,
		Mask:       BuildMask(text),
	}
	if err := e.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return Project(m, text), nil
}

// Current returns the owner's newest match that is either still playing or
// finished within the grace window, reconciling expiry first. Returns
// ErrMatchNotFound when there is nothing to show.
func (e *Engine) Current(ctx context.Context, owner Owner) (*SafeMatch, error) {
	cutoff := e.now().Add(-e.cfg.GraceWindow)
	m, err := e.store.LatestMatch(ctx, owner, cutoff)
	if err != nil {
		return nil, err
	}
	if err := e.reconcile(ctx, m); err != nil {
		return nil, err
	}
	// A match reconciled to lost may have started before the grace window;
	// by then it is history, not a current match.
	if m.Status.Terminal() && m.StartedAt.Before(cutoff) {
		return nil, ErrMatchNotFound
	}
	return e.project(ctx, m)
}

// Get returns the safe projection of a single match, reconciling expiry
// first. This is the read path guests use, keyed by match id.
func (e *Engine) Get(ctx context.Context, matchID string, owner Owner) (*SafeMatch, error) {
	m, err := e.loadOwned(ctx, matchID, owner)
	if err != nil {
		return nil, err
	}
	if err := e.reconcile(ctx, m); err != nil {
		return nil, err
	}
	return e.project(ctx, m)
}

// GuessLetter processes a single-letter guess.
func (e *Engine) GuessLetter(ctx context.Context, matchID string, owner Owner, letter string) (*Result, error) {
	m, err := e.loadOwned(ctx, matchID, owner)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, ErrNotPlayable
	}
	if err := e.reconcile(ctx, m); err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return e.result(ctx, m, "Time over.")
	}

	ch, err := normalizeLetter(letter)
	if err != nil {
		return nil, err
	}
	isVowel := letters.IsVowel(rune(ch))
	if isVowel && m.UsedVowel {
		return nil, ErrVowelUsed
	}

	sent, err := e.store.Sentence(ctx, m.SentenceID)
	if err != nil {
		return nil, fmt.Errorf("load sentence: %w", err)
	}
	text := strings.ToUpper(sent.Text)

	cost := letters.Cost(rune(ch))
	present := strings.IndexByte(text, ch) >= 0
	effective := cost
	if !present {
		effective = cost * 2 // wrong guesses cost double
	}

	// The base-cost gate is advisory; the actual debit is applied against the
	// balance current inside the store transaction and clamped there.
	charged := !owner.IsGuest()
	if charged {
		coins, err := e.store.Coins(ctx, owner.UserID())
		if err != nil {
			return nil, fmt.Errorf("read balance: %w", err)
		}
		if coins < cost {
			return nil, ErrInsufficientCoins
		}
	}

	if present {
		m.Mask = Reveal(text, m.Mask, ch)
	}
	if !strings.ContainsRune(m.Guessed, rune(ch)) {
		m.Guessed += string(ch)
	}
	// The vowel budget is spent by the attempt, hit or miss.
	m.UsedVowel = m.UsedVowel || isVowel

	msg := "Letter not present (cost doubled)."
	if present {
		msg = "Letter revealed."
	}
	delta := -effective
	if AllRevealed(text, m.Mask) {
		m.Status = StatusWon
		msg = "You guessed all letters!"
		delta += e.cfg.WinBonus
	}

	if charged {
		_, err = e.store.SaveMatchAndAdjustCoins(ctx, m, owner.UserID(), delta)
	} else {
		err = e.store.SaveMatch(ctx, m)
	}
	if err != nil {
		return nil, fmt.Errorf("save guess: %w", err)
	}
	return &Result{Match: Project(m, text), Message: msg}, nil
}

// GuessSentence processes a full-sentence guess. Sentence guesses are free:
// the only way to spend coins is letter by letter.
func (e *Engine) GuessSentence(ctx context.Context, matchID string, owner Owner, guess string) (*Result, error) {
	m, err := e.loadOwned(ctx, matchID, owner)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, ErrNotPlayable
	}
	if err := e.reconcile(ctx, m); err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return e.result(ctx, m, "Time over.")
	}

	if strings.TrimSpace(guess) == "" {
		return nil, ErrEmptySentence
	}

	sent, err := e.store.Sentence(ctx, m.SentenceID)
	if err != nil {
		return nil, fmt.Errorf("load sentence: %w", err)
	}
	text := strings.ToUpper(sent.Text)

	if strings.ToUpper(strings.TrimSpace(guess)) != text {
		return &Result{Match: Project(m, text), Message: "Wrong sentence. Keep trying!"}, nil
	}

	m.Mask = FullMask(text)
	m.Status = StatusWon
	msg := "Correct sentence! Well done!"
	if owner.IsGuest() {
		if err := e.store.SaveMatch(ctx, m); err != nil {
			return nil, fmt.Errorf("save win: %w", err)
		}
	} else {
		if _, err := e.store.SaveMatchAndAdjustCoins(ctx, m, owner.UserID(), e.cfg.WinBonus); err != nil {
			return nil, fmt.Errorf("save win: %w", err)
		}
		msg = fmt.Sprintf("Correct sentence! You gained +%d coins!", e.cfg.WinBonus)
	}
	return &Result{Match: Project(m, text), Message: msg}, nil
}

// Abandon marks a playing match abandoned. No penalty, and the projection of
// an abandoned match never exposes the solution.
func (e *Engine) Abandon(ctx context.Context, matchID string, owner Owner) (*Result, error) {
	m, err := e.loadOwned(ctx, matchID, owner)
	if err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return nil, ErrNotPlayable
	}
	if err := e.reconcile(ctx, m); err != nil {
		return nil, err
	}
	if m.Status.Terminal() {
		return e.result(ctx, m, "Time over.")
	}

	m.Status = StatusAbandoned
	if err := e.store.SaveMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("save abandon: %w", err)
	}
	return e.result(ctx, m, "Match abandoned.")
}

// reconcile is the lazy timeout closure: a playing match past its deadline is
// closed as lost, charging the owner min(TimeoutPenalty, balance). It is a
// no-op on terminal or unexpired matches, so callers can always invoke it
// before acting.
func (e *Engine) reconcile(ctx context.Context, m *Match) error {
	if m.Status.Terminal() || e.now().Before(m.EndsAt) {
		return nil
	}
	m.Status = StatusLost
	if m.UserID == "" {
		if err := e.store.SaveMatch(ctx, m); err != nil {
			return fmt.Errorf("close expired match: %w", err)
		}
		return nil
	}
	// The store clamps at zero, so a low balance pays what it can.
	if _, err := e.store.SaveMatchAndAdjustCoins(ctx, m, m.UserID, -e.cfg.TimeoutPenalty); err != nil {
		return fmt.Errorf("close expired match: %w", err)
	}
	return nil
}

// loadOwned fetches a match and enforces ownership: a guest actor owns
// exactly the ownerless matches, a user owns matches carrying their id.
func (e *Engine) loadOwned(ctx context.Context, matchID string, owner Owner) (*Match, error) {
	m, err := e.store.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.OwnedBy(owner) {
		return nil, ErrUnauthorized
	}
	return m, nil
}

// project builds the safe view after loading the match's sentence text.
func (e *Engine) project(ctx context.Context, m *Match) (*SafeMatch, error) {
	sent, err := e.store.Sentence(ctx, m.SentenceID)
	if err != nil {
		return nil, fmt.Errorf("load sentence: %w", err)
	}
	return Project(m, strings.ToUpper(sent.Text)), nil
}

func (e *Engine) result(ctx context.Context, m *Match, msg string) (*Result, error) {
	sm, err := e.project(ctx, m)
	if err != nil {
		return nil, err
	}
	return &Result{Match: sm, Message: msg}, nil
}

// normalizeLetter validates a raw guess and returns it as an uppercase byte.
func normalizeLetter(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, ErrInvalidLetter
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, ErrInvalidLetter
	}
	return c, nil
}
