package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minSentenceRunes filters out headings, list bullets and other fragments
// too short to make a usable question.
const minSentenceRunes = 20

// SplitSentences cuts plain text on '.', '?' or '!' followed by whitespace
// (or end of text), trims each piece, and drops fragments shorter than 20
// runes. Returns ErrInsufficientText when nothing survives.
func SplitSentences(text string) ([]string, error) {
	out := []string{}
	var cur strings.Builder
	runes := []rune(text)
	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if utf8.RuneCountInString(s) >= minSentenceRunes {
			out = append(out, s)
		}
	}
	for i, r := range runes {
		cur.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	if len(out) == 0 {
		return nil, ErrInsufficientText
	}
	return out, nil
}
