package grading

import (
	"math"

	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
)

// Summary is the outcome of one grading pass over a quiz.
type Summary struct {
	Correct    int `json:"correct_answers"`
	Total      int `json:"total_questions"`
	Percentage int `json:"percentage"`
}

// Strategy decides correctness for a single question.
type Strategy interface {
	Correct(q quiz.Question, ans Answer) bool
}

type Engine struct {
	strategies map[string]Strategy
}

// NewEngine installs the built-in per-type strategies. free_text has no
// strategy on purpose: it needs manual grading and never auto-scores.
func NewEngine() *Engine {
	return &Engine{
		strategies: map[string]Strategy{
			quiz.TypeMCQSingle: mcqSingleStrategy{},
			quiz.TypeMCQMulti:  mcqMultiStrategy{},
			quiz.TypeTrueFalse: trueFalseStrategy{},
		},
	}
}

// AnswerKey builds the submission-map key for a question.
func AnswerKey(questionID string) string { return "question_" + questionID }

// Grade scores a learner's answer map against a loaded question set. Pure:
// no side effects, and bad learner input is never an error, it just earns
// no credit. Free-text questions are excluded from both counts.
func (e *Engine) Grade(questions []quiz.Question, answers map[string]interface{}) Summary {
	var sum Summary
	for _, q := range questions {
		s, ok := e.strategies[q.Type]
		if !ok {
			continue
		}
		sum.Total++
		ans := ParseAnswer(q.Type, answers[AnswerKey(q.ID)])
		if s.Correct(q, ans) {
			sum.Correct++
		}
	}
	sum.Percentage = percent(sum.Correct, sum.Total)
	return sum
}

// percent rounds half away from zero: 12.5% -> 13.
func percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// --- Strategies ---

type mcqSingleStrategy struct{}

func (mcqSingleStrategy) Correct(q quiz.Question, ans Answer) bool {
	if ans.Kind != KindSingleID {
		return false
	}
	for _, c := range q.Choices {
		if c.ID == ans.ID {
			return c.IsCorrect
		}
	}
	return false
}

type mcqMultiStrategy struct{}

func (mcqMultiStrategy) Correct(q quiz.Question, ans Answer) bool {
	if ans.Kind != KindIDList {
		return false
	}
	valid := map[string]bool{} // choice id -> is_correct
	correct := map[string]struct{}{}
	for _, c := range q.Choices {
		valid[c.ID] = c.IsCorrect
		if c.IsCorrect {
			correct[c.ID] = struct{}{}
		}
	}
	// Selected ids that resolve to real choices must equal the correct set
	// exactly. No partial credit.
	selected := map[string]struct{}{}
	for _, id := range ans.IDs {
		if _, ok := valid[id]; ok {
			selected[id] = struct{}{}
		}
	}
	return setEqual(selected, correct)
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Correct(q quiz.Question, ans Answer) bool {
	if ans.Kind != KindBoolLike {
		return false
	}
	first, ok := firstChoice(q)
	if !ok {
		return false // zero choices can never be correct
	}
	return ans.Bool == first.IsCorrect
}

func firstChoice(q quiz.Question) (quiz.Choice, bool) {
	if len(q.Choices) == 0 {
		return quiz.Choice{}, false
	}
	first := q.Choices[0]
	for _, c := range q.Choices[1:] {
		if c.Position < first.Position {
			first = c
		}
	}
	return first, true
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
