package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAttemptUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.PutQuiz(ctx, Quiz{ID: "quiz-1", Title: "algebra"}))

	first, err := s.RecordAttempt(ctx, "quiz-1", "user-1", GradeSummary{Correct: 1, Total: 2, Percentage: 50})
	require.NoError(t, err)

	second, err := s.RecordAttempt(ctx, "quiz-1", "user-1", GradeSummary{Correct: 2, Total: 2, Percentage: 100})
	require.NoError(t, err)

	// Same row, fields from the second submission.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Score)
	assert.Equal(t, 100, second.Percentage)

	all, err := s.ListAttempts(ctx, AttemptListOpts{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1, "re-submission must never create a second row")

	got, err := s.GetAttempt(ctx, "quiz-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
}

func TestRecordAttemptUnknownQuiz(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.RecordAttempt(context.Background(), "nope", "user-1", GradeSummary{})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestAttemptsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.PutQuiz(ctx, Quiz{ID: "quiz-1", Title: "algebra"}))

	_, err := s.RecordAttempt(ctx, "quiz-1", "user-1", GradeSummary{Correct: 1, Total: 1, Percentage: 100})
	require.NoError(t, err)
	_, err = s.RecordAttempt(ctx, "quiz-1", "user-2", GradeSummary{Correct: 0, Total: 1, Percentage: 0})
	require.NoError(t, err)

	all, err := s.ListAttempts(ctx, AttemptListOpts{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListAttempts(ctx, AttemptListOpts{QuizID: "quiz-1", UserID: "user-2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 0, mine[0].Score)
}

func TestDeleteQuizCascadesAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.PutQuiz(ctx, Quiz{ID: "quiz-1", Title: "algebra"}))
	_, err := s.RecordAttempt(ctx, "quiz-1", "user-1", GradeSummary{Correct: 1, Total: 1, Percentage: 100})
	require.NoError(t, err)

	require.NoError(t, s.DeleteQuiz(ctx, "quiz-1"))
	_, err = s.GetAttempt(ctx, "quiz-1", "user-1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestStripAnswers(t *testing.T) {
	q := Quiz{Questions: []Question{{
		Type: TypeMCQSingle,
		Choices: []Choice{
			{ID: "a", IsCorrect: true},
			{ID: "b"},
		},
	}}}
	safe := StripAnswers(q)
	for _, c := range safe.Questions[0].Choices {
		assert.False(t, c.IsCorrect)
	}
}
