package letters

import "testing"

func TestCostTiers(t *testing.T) {
	cases := []struct {
		letter rune
		want   int
	}{
		{'A', 10}, {'E', 10}, {'I', 10}, {'O', 10}, {'U', 10},
		{'T', 5}, {'N', 5}, {'S', 5}, {'H', 5}, {'R', 5},
		{'D', 4}, {'L', 4},
		{'C', 3}, {'M', 3}, {'W', 3}, {'F', 3}, {'G', 3}, {'Y', 3}, {'P', 3},
		{'B', 2}, {'V', 2}, {'K', 2},
		{'J', 1}, {'X', 1}, {'Q', 1}, {'Z', 1},
	}
	for _, c := range cases {
		if got := Cost(c.letter); got != c.want {
			t.Errorf("Cost(%q) = %d, want %d", c.letter, got, c.want)
		}
	}
}

func TestCostCaseInsensitive(t *testing.T) {
	for _, pair := range [][2]rune{{'a', 'A'}, {'t', 'T'}, {'z', 'Z'}} {
		if Cost(pair[0]) != Cost(pair[1]) {
			t.Errorf("Cost(%q) != Cost(%q)", pair[0], pair[1])
		}
	}
}

func TestCostDefaultForUnknown(t *testing.T) {
	if got := Cost('7'); got != defaultCost {
		t.Errorf("Cost('7') = %d, want default %d", got, defaultCost)
	}
	if got := Cost('É'); got != defaultCost {
		t.Errorf("Cost('É') = %d, want default %d", got, defaultCost)
	}
}

func TestCostCoversWholeAlphabet(t *testing.T) {
	for ch := 'A'; ch <= 'Z'; ch++ {
		got := Cost(ch)
		if got < 1 || got > 10 {
			t.Errorf("Cost(%q) = %d, out of range", ch, got)
		}
	}
}

func TestIsVowel(t *testing.T) {
	for _, v := range "AEIOUaeiou" {
		if !IsVowel(v) {
			t.Errorf("IsVowel(%q) = false", v)
		}
	}
	for _, c := range "TNSHRz" {
		if IsVowel(c) {
			t.Errorf("IsVowel(%q) = true", c)
		}
	}
}

func TestFrequency(t *testing.T) {
	if got := Frequency('e'); got != 12.7 {
		t.Errorf("Frequency('e') = %v, want 12.7", got)
	}
	if got := Frequency('?'); got != 0 {
		t.Errorf("Frequency('?') = %v, want 0", got)
	}
}

func TestRandomDistinct(t *testing.T) {
	got := Random(10)
	if len(got) != 10 {
		t.Fatalf("Random(10) returned %d letters", len(got))
	}
	seen := map[string]bool{}
	for _, info := range got {
		if seen[info.Letter] {
			t.Fatalf("duplicate letter %q", info.Letter)
		}
		seen[info.Letter] = true
		if info.Cost != Cost(rune(info.Letter[0])) {
			t.Errorf("letter %q cost mismatch", info.Letter)
		}
		if info.Frequency != Frequency(rune(info.Letter[0])) {
			t.Errorf("letter %q frequency mismatch", info.Letter)
		}
	}
}

func TestRandomClampsToAlphabet(t *testing.T) {
	if got := Random(100); len(got) != len(Frequencies) {
		t.Errorf("Random(100) returned %d letters, want %d", len(got), len(Frequencies))
	}
}

func TestRandomFullAlphabet(t *testing.T) {
	got := Random(len(Frequencies))
	seen := map[string]bool{}
	for _, info := range got {
		seen[info.Letter] = true
	}
	// A full-size sample must be a permutation of the alphabet.
	for ch := 'A'; ch <= 'Z'; ch++ {
		if !seen[string(ch)] {
			t.Errorf("letter %q missing from full sample", ch)
		}
	}
}
