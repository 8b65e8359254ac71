package engine

import "strings"

const (
	screenIDPrefix = "SCREEN_"
	// Bounded search. A flow with thousands of screens is far beyond anything
	// the editor supports, so exhausting this space never happens in practice.
	maxIDCandidates = 2000
)

// NewScreenID returns the first unused ID in the sequence SCREEN_A..SCREEN_Z,
// SCREEN_AA.. (base-26, letters only). Comparison against existing IDs is
// case-insensitive. If the search space is somehow exhausted it returns
// SCREEN_A as a last resort rather than failing.
func NewScreenID(existing []string) string {
	used := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		used[strings.ToUpper(id)] = struct{}{}
	}
	for n := 0; n < maxIDCandidates; n++ {
		candidate := screenIDPrefix + letterSequence(n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
	return screenIDPrefix + "A"
}

// letterSequence maps 0..25 to A..Z, 26 to AA, 27 to AB and so on. Digits are
// 0-indexed (A means 0), so this is not the bijective spreadsheet numbering:
// after Z comes AA, after ZZ comes AAA.
func letterSequence(n int) string {
	length := 1
	block := 26
	for n >= block {
		n -= block
		block *= 26
		length++
	}
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf)
}
