package game

import "testing"

func TestBuildMask(t *testing.T) {
	mask := BuildMask("CAT SAT")
	if mask != "0001000" {
		t.Fatalf("BuildMask = %q, want %q", mask, "0001000")
	}
}

func TestRevealMatchesAllPositions(t *testing.T) {
	s := "CAT SAT"
	mask := Reveal(s, BuildMask(s), 'A')
	if mask != "0101010" {
		t.Fatalf("Reveal A = %q, want %q", mask, "0101010")
	}
}

func TestRevealIdempotent(t *testing.T) {
	s := "CAT SAT"
	once := Reveal(s, BuildMask(s), 'T')
	twice := Reveal(s, once, 'T')
	if once != twice {
		t.Fatalf("Reveal not idempotent: %q != %q", once, twice)
	}
}

func TestRevealAbsentLetterUnchanged(t *testing.T) {
	s := "CAT SAT"
	initial := BuildMask(s)
	if got := Reveal(s, initial, 'Z'); got != initial {
		t.Fatalf("Reveal Z changed mask: %q", got)
	}
}

func TestAllRevealed(t *testing.T) {
	s := "CAT SAT"
	mask := BuildMask(s)
	if AllRevealed(s, mask) {
		t.Fatal("fresh mask reported fully revealed")
	}
	for _, ch := range []byte{'C', 'A', 'T', 'S'} {
		mask = Reveal(s, mask, ch)
	}
	if !AllRevealed(s, mask) {
		t.Fatalf("mask %q not reported fully revealed", mask)
	}
}

func TestFullMask(t *testing.T) {
	s := "GO ON"
	if got := FullMask(s); got != "11111" {
		t.Fatalf("FullMask = %q", got)
	}
	if !AllRevealed(s, FullMask(s)) {
		t.Fatal("FullMask not fully revealed")
	}
}

func TestRevealedCharsNullConvention(t *testing.T) {
	s := "CAT SAT"
	mask := Reveal(s, BuildMask(s), 'A')
	got := RevealedChars(s, mask)
	if len(got) != len(s) {
		t.Fatalf("length %d, want %d", len(got), len(s))
	}
	// Spaces and hidden letters are both nil; only revealed letters carry text.
	for i, want := range []string{"", "A", "", "", "", "A", ""} {
		if want == "" {
			if got[i] != nil {
				t.Errorf("position %d: want nil, got %q", i, *got[i])
			}
			continue
		}
		if got[i] == nil || *got[i] != want {
			t.Errorf("position %d: want %q, got %v", i, want, got[i])
		}
	}
}

func TestSpaces(t *testing.T) {
	got := Spaces("CAT SAT")
	for i, want := range []bool{false, false, false, true, false, false, false} {
		if got[i] != want {
			t.Errorf("position %d: want %v", i, want)
		}
	}
}
