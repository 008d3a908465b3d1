package quiz

import (
	"context"
	"errors"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptConflict reports a duplicate (quiz, user) attempt insert that
	// raced past the upsert. Callers surface it as a 409.
	ErrAttemptConflict = errors.New("attempt already exists for this quiz and user")
)

type ListOpts struct {
	Q       string
	ClassID string
	Limit   int
	Offset  int
	Sort    string // created_at|title (default: created_at desc)
}

type AttemptListOpts struct {
	QuizID string
	UserID string
	Limit  int
	Offset int
}

// GradeSummary is the grading engine's output, persisted by RecordAttempt.
type GradeSummary struct {
	Correct    int
	Total      int
	Percentage int
}

type Store interface {
	// PutQuiz creates or replaces a quiz. The question/choice subtree is
	// replaced wholesale inside one transaction; no incremental diffing.
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz returns the full quiz including answer keys.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error)

	ListClasses(ctx context.Context) ([]Class, error)

	// RecordAttempt upserts the single attempt row for (quizID, userID).
	// Last write wins; a fresh completion timestamp is set on every call.
	RecordAttempt(ctx context.Context, quizID, userID string, sum GradeSummary) (Attempt, error)
	GetAttempt(ctx context.Context, quizID, userID string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}

// StripAnswers returns a copy with correctness flags removed so a quiz can
// be served to a learner. The input (and any store-held slices) is left
// untouched.
func StripAnswers(q Quiz) Quiz {
	questions := make([]Question, len(q.Questions))
	copy(questions, q.Questions)
	for i := range questions {
		choices := make([]Choice, len(questions[i].Choices))
		copy(choices, questions[i].Choices)
		for j := range choices {
			choices[j].IsCorrect = false
		}
		questions[i].Choices = choices
	}
	q.Questions = questions
	return q
}
