// internal/game/project.go
//
// Match view projector: converts internal match state into the client-safe
// shape. The one rule that matters here is solution exposure: the sentence
// text appears only on won and lost matches. Playing matches would be
// trivialized by it, and abandoned matches deliberately keep the answer
// hidden so quitting never spoils a sentence.

package game

// SafeMatch is the externally visible match state.
type SafeMatch struct {
	ID             string    `json:"id"`
	Status         Status    `json:"status"`
	EndsAt         int64     `json:"endsAt"` // unix seconds
	RevealedMask   string    `json:"revealedMask"`
	GuessedLetters []string  `json:"guessedLetters"`
	UsedVowel      bool      `json:"usedVowel"`
	Spaces         []bool    `json:"spaces"`
	Revealed       []*string `json:"revealed"` // nil for hidden positions and spaces
	Sentence       *string   `json:"sentence"` // non-nil only when won or lost
}

// Project builds the safe view of m against its uppercase sentence text.
// Callers are expected to have run the engine's reconcile step first so the
// status reflects expiry.
func Project(m *Match, sentence string) *SafeMatch {
	guessed := make([]string, 0, len(m.Guessed))
	for _, r := range m.Guessed {
		guessed = append(guessed, string(r))
	}

	var solution *string
	if m.Status == StatusWon || m.Status == StatusLost {
		s := sentence
		solution = &s
	}

	return &SafeMatch{
		ID:             m.ID,
		Status:         m.Status,
		EndsAt:         m.EndsAt.Unix(),
		RevealedMask:   m.Mask,
		GuessedLetters: guessed,
		UsedVowel:      m.UsedVowel,
		Spaces:         Spaces(sentence),
		Revealed:       RevealedChars(sentence, m.Mask),
		Sentence:       solution,
	}
}
