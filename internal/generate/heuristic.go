package generate

import (
	"strings"
	"unicode/utf8"

	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
)

const (
	mcqPrompt       = "Which of the following statements is supported by the text?"
	freeTextPrefix  = "Explain in your own words: "
	trueFalsePrefix = "True or False: "

	maxChoiceRunes = 140
	distractorsPer = 3
)

// Padding when a document has too few distinct sentences to fill an MCQ.
var genericDistractors = []string{
	"None of the statements above appear in the text.",
	"The text does not discuss this topic at all.",
	"This statement contradicts the passage entirely.",
}

// Heuristic builds question drafts straight from the sentence list, no AI
// involved. Each question type consumes its own disjoint slice of the
// sentences: free-text the first textCount, MCQ the next mcqCount,
// true/false the slice after that. Running out of sentences yields fewer
// drafts than requested, never an error. Output order is MCQ, then
// true/false, then free-text, positions renumbered contiguously.
func Heuristic(sentences []string, mcqCount, tfCount, textCount int) []quiz.Draft {
	textPool := slicePool(sentences, 0, textCount)
	mcqPool := slicePool(sentences, textCount, mcqCount)
	tfPool := slicePool(sentences, textCount+mcqCount, tfCount)

	drafts := mcqDrafts(mcqPool, mcqCount)
	drafts = append(drafts, tfDrafts(tfPool, tfCount)...)
	drafts = append(drafts, textDrafts(textPool)...)
	Renumber(drafts)
	return drafts
}

func slicePool(sentences []string, start, n int) []string {
	if n <= 0 || start >= len(sentences) {
		return nil
	}
	end := start + n
	if end > len(sentences) {
		end = len(sentences)
	}
	return sentences[start:end]
}

func mcqDrafts(pool []string, count int) []quiz.Draft {
	n := count
	if len(pool) < n {
		n = len(pool)
	}
	out := make([]quiz.Draft, 0, n)
	for slot := 0; slot < n; slot++ {
		correct := pool[slot%len(pool)]

		// Scan forward circularly for distractors, skipping duplicates of
		// the correct sentence, then pad from the generic pool.
		distractors := []string{}
		for step := 1; step < len(pool) && len(distractors) < distractorsPer; step++ {
			cand := pool[(slot+step)%len(pool)]
			if cand == correct || contains(distractors, cand) {
				continue
			}
			distractors = append(distractors, cand)
		}
		for i := 0; len(distractors) < distractorsPer; i++ {
			distractors = append(distractors, genericDistractors[i%len(genericDistractors)])
		}

		// The correct choice sits first internally; persistence relies on
		// is_correct, not position, so no shuffle is applied.
		choices := []quiz.DraftChoice{{Text: truncateChoice(correct), IsCorrect: true}}
		for _, d := range distractors {
			choices = append(choices, quiz.DraftChoice{Text: truncateChoice(d)})
		}
		for i := range choices {
			choices[i].Position = i
		}
		out = append(out, quiz.Draft{
			Text:    mcqPrompt,
			Type:    quiz.TypeMCQSingle,
			Choices: choices,
		})
	}
	return out
}

func tfDrafts(pool []string, count int) []quiz.Draft {
	n := count
	if len(pool) < n {
		n = len(pool)
	}
	out := make([]quiz.Draft, 0, n)
	for slot := 0; slot < n; slot++ {
		stmt := pool[slot%len(pool)]
		truth := slot%2 == 0 // alternate the asserted truth value by parity
		out = append(out, quiz.Draft{
			Text:    trueFalsePrefix + stmt,
			Type:    quiz.TypeTrueFalse,
			Choices: trueFalseChoices(truth),
		})
	}
	return out
}

func textDrafts(pool []string) []quiz.Draft {
	out := make([]quiz.Draft, 0, len(pool))
	for _, s := range pool {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, quiz.Draft{
			Text: freeTextPrefix + s,
			Type: quiz.TypeFreeText,
		})
	}
	return out
}

func trueFalseChoices(truth bool) []quiz.DraftChoice {
	return []quiz.DraftChoice{
		{Text: "True", IsCorrect: truth, Position: 0},
		{Text: "False", IsCorrect: !truth, Position: 1},
	}
}

// Renumber rewrites draft positions to a contiguous 0..n-1 sequence.
func Renumber(drafts []quiz.Draft) {
	for i := range drafts {
		drafts[i].Position = i
	}
}

func truncateChoice(s string) string {
	if utf8.RuneCountInString(s) <= maxChoiceRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxChoiceRunes]) + "…"
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
