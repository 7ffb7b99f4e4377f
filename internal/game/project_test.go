package game

import (
	"testing"
	"time"
)

func testMatch(status Status) *Match {
	sentence := "CAT SAT"
	return &Match{
		ID:         "m1",
		UserID:     "u1",
		SentenceID: "s1",
		StartedAt:  time.Unix(1700000000, 0),
		EndsAt:     time.Unix(1700000060, 0),
		Status:     status,
		Mask:       Reveal(sentence, BuildMask(sentence), 'A'),
		Guessed:    "A",
		UsedVowel:  true,
	}
}

// The critical information-hiding rule: the solution appears exactly for won
// and lost matches, never while playing and never after an abandon.
func TestProjectSolutionExposure(t *testing.T) {
	cases := []struct {
		status  Status
		exposed bool
	}{
		{StatusPlaying, false},
		{StatusWon, true},
		{StatusLost, true},
		{StatusAbandoned, false},
	}
	for _, c := range cases {
		got := Project(testMatch(c.status), "CAT SAT")
		if c.exposed {
			if got.Sentence == nil || *got.Sentence != "CAT SAT" {
				t.Errorf("status %q: sentence not exposed", c.status)
			}
		} else if got.Sentence != nil {
			t.Errorf("status %q: sentence leaked: %q", c.status, *got.Sentence)
		}
	}
}

func TestProjectFields(t *testing.T) {
	got := Project(testMatch(StatusPlaying), "CAT SAT")

	if got.ID != "m1" || got.Status != StatusPlaying {
		t.Errorf("identity fields: %q %q", got.ID, got.Status)
	}
	if got.EndsAt != 1700000060 {
		t.Errorf("endsAt = %d", got.EndsAt)
	}
	if got.RevealedMask != "0101010" {
		t.Errorf("mask = %q", got.RevealedMask)
	}
	if len(got.GuessedLetters) != 1 || got.GuessedLetters[0] != "A" {
		t.Errorf("guessedLetters = %v", got.GuessedLetters)
	}
	if !got.UsedVowel {
		t.Error("usedVowel lost in projection")
	}
	if len(got.Spaces) != 7 || !got.Spaces[3] {
		t.Errorf("spaces = %v", got.Spaces)
	}
	if got.Revealed[1] == nil || *got.Revealed[1] != "A" || got.Revealed[0] != nil || got.Revealed[3] != nil {
		t.Errorf("revealed projection wrong: %v", got.Revealed)
	}
}
