// internal/game/mask.go
//
// Mask/reveal engine: pure functions over the per-position reveal state of a
// sentence. A mask is a string of '0'/'1' bytes, one per sentence byte, where
// space positions are always revealed.
//
// All functions are total given mask and sentence of equal length; they never
// mutate their inputs.

package game

// BuildMask produces the initial mask for an uppercase sentence: spaces
// revealed, letters hidden.
func BuildMask(sentence string) string {
	b := make([]byte, len(sentence))
	for i := 0; i < len(sentence); i++ {
		if sentence[i] == ' ' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Reveal returns mask with every position matching letter set revealed.
// Idempotent: revealing the same letter twice is a no-op the second time.
func Reveal(sentence, mask string, letter byte) string {
	b := []byte(mask)
	for i := 0; i < len(sentence); i++ {
		if sentence[i] == letter {
			b[i] = '1'
		}
	}
	return string(b)
}

// AllRevealed reports whether every non-space position of the mask is revealed.
func AllRevealed(sentence, mask string) bool {
	for i := 0; i < len(mask); i++ {
		if sentence[i] != ' ' && mask[i] == '0' {
			return false
		}
	}
	return true
}

// FullMask returns a mask with every position revealed, used when a full
// sentence guess wins the match.
func FullMask(sentence string) string {
	b := make([]byte, len(sentence))
	for i := range b {
		b[i] = '1'
	}
	return string(b)
}

// RevealedChars projects the per-position revealed characters: the actual
// letter where the mask is revealed, nil otherwise. Spaces are always nil so
// the projection leaks nothing beyond the separate space-indicator array.
func RevealedChars(sentence, mask string) []*string {
	out := make([]*string, len(sentence))
	for i := 0; i < len(sentence); i++ {
		if sentence[i] == ' ' {
			continue
		}
		if mask[i] == '1' {
			ch := string(sentence[i])
			out[i] = &ch
		}
	}
	return out
}

// Spaces returns the per-position space indicators for a sentence.
func Spaces(sentence string) []bool {
	out := make([]bool, len(sentence))
	for i := 0; i < len(sentence); i++ {
		out[i] = sentence[i] == ' '
	}
	return out
}
