// internal/letters/letters.go
//
// Letter pricing table for the guess-the-sentence game.
// Responsibilities:
//   - Map each letter to a coin cost: vowels are flat-priced at 10, consonants are
//     bucketed into descending tiers by approximate English frequency (5 down to 1).
//   - Expose indicative relative frequencies for informational display.
//   - Sample random distinct letters (the "letter wheel" shown on the home page).
//
// Pricing is inverse to guessing value: the letters most likely to appear in a
// sentence cost the most to try.

package letters

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Frequencies holds indicative English letter frequencies in percent.
var Frequencies = map[rune]float64{
	'E': 12.7, 'T': 9.1, 'A': 8.2, 'O': 7.5, 'I': 7.0, 'N': 6.7, 'S': 6.3,
	'H': 6.1, 'R': 6.0, 'D': 4.3, 'L': 4.0, 'C': 2.8, 'U': 2.8, 'M': 2.4,
	'W': 2.4, 'F': 2.2, 'G': 2.0, 'Y': 2.0, 'P': 1.9, 'B': 1.5, 'V': 1.0,
	'K': 0.8, 'J': 0.15, 'X': 0.15, 'Q': 0.1, 'Z': 0.07,
}

const vowels = "AEIOU"

// Consonant cost tiers, most frequent first.
var (
	tier5 = "TNSHR"
	tier4 = "DL"
	tier3 = "CMWFGYP"
	tier2 = "BVK"
	tier1 = "JXQZ"
)

// defaultCost is returned for letters missing from every tier.
const defaultCost = 2

// IsVowel reports whether ch is one of A, E, I, O, U (case-insensitive).
func IsVowel(ch rune) bool {
	return strings.ContainsRune(vowels, upper(ch))
}

// Cost returns the coin price of guessing ch. Total over any rune; unknown
// letters fall back to a safe default.
func Cost(ch rune) int {
	c := upper(ch)
	switch {
	case strings.ContainsRune(vowels, c):
		return 10
	case strings.ContainsRune(tier5, c):
		return 5
	case strings.ContainsRune(tier4, c):
		return 4
	case strings.ContainsRune(tier3, c):
		return 3
	case strings.ContainsRune(tier2, c):
		return 2
	case strings.ContainsRune(tier1, c):
		return 1
	}
	return defaultCost
}

// Frequency returns the indicative frequency of ch in percent, or 0 for
// characters outside the alphabet.
func Frequency(ch rune) float64 {
	return Frequencies[upper(ch)]
}

// Info bundles a letter with its display data.
type Info struct {
	Letter    string  `json:"letter"`
	Frequency float64 `json:"frequency"`
	Cost      int     `json:"cost"`
}

// Random samples n distinct letters with their frequency and cost.
// n is clamped to the alphabet size. The alphabet is shuffled once and the
// first n letters taken, so the call always terminates even if the randomness
// source misbehaves.
func Random(n int) []Info {
	alphabet := make([]rune, 0, len(Frequencies))
	for r := range Frequencies {
		alphabet = append(alphabet, r)
	}
	for i := len(alphabet) - 1; i > 0; i-- {
		j := randInt(i + 1)
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	}
	if n > len(alphabet) {
		n = len(alphabet)
	}
	out := make([]Info, 0, n)
	for _, r := range alphabet[:n] {
		out = append(out, Info{Letter: string(r), Frequency: Frequencies[r], Cost: Cost(r)})
	}
	return out
}

// upper maps ASCII a-z to A-Z and leaves everything else alone.
func upper(ch rune) rune {
	if ch >= 'a' && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}

// randInt returns a crypto-random int in [0, n).
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
