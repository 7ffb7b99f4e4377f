// internal/game/errors.go
//
// Domain errors returned by the match lifecycle engine. The HTTP boundary
// maps these to 4xx responses; anything else propagating out of the engine is
// an infrastructure failure.

package game

import "errors"

var (
	// ErrMatchNotFound means no match exists for the given id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrNotPlayable means the match is in a terminal state.
	ErrNotPlayable = errors.New("match not playable")
	// ErrUnauthorized means the actor does not own the match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrVowelUsed means the single vowel budget for the match is spent.
	ErrVowelUsed = errors.New("vowel already used in this match")
	// ErrInsufficientCoins means the balance does not cover the base letter cost.
	ErrInsufficientCoins = errors.New("insufficient coins")
	// ErrInvalidLetter means the guess is not a single alphabetic character.
	ErrInvalidLetter = errors.New("letter must be a single alphabetic character")
	// ErrEmptySentence means a sentence guess was blank.
	ErrEmptySentence = errors.New("sentence guess is empty")
	// ErrNoSentences means the sentence pool for the requested mode is empty.
	ErrNoSentences = errors.New("sentence pool is empty")
)
