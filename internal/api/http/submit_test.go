package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niraeuru/ClassroomConnect/internal/grading"
	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
	"github.com/Niraeuru/ClassroomConnect/internal/rbac"
)

func seedQuiz(t *testing.T, store quiz.Store) quiz.Quiz {
	t.Helper()
	q := quiz.Quiz{
		ID:    "quiz-1",
		Title: "Biology basics",
		Questions: []quiz.Question{
			{
				ID: "q1", Text: "Which organelle produces ATP?", Type: quiz.TypeMCQSingle, Position: 0,
				Choices: []quiz.Choice{
					{ID: "c-mito", Text: "Mitochondria", IsCorrect: true, Position: 0},
					{ID: "c-nucl", Text: "Nucleus", Position: 1},
				},
			},
			{
				ID: "q2", Text: "True or False: osmosis needs energy.", Type: quiz.TypeTrueFalse, Position: 1,
				Choices: []quiz.Choice{
					{ID: "c-t", Text: "True", Position: 0},
					{ID: "c-f", Text: "False", IsCorrect: true, Position: 1},
				},
			},
		},
	}
	require.NoError(t, store.PutQuiz(context.Background(), q))
	return q
}

func submitRouter(store quiz.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(store, grading.NewEngine(), nil))
	r.Get("/quizzes/{quizID}/attempt", GetOwnAttemptHandler(store))
	r.Get("/attempts", ListAttemptsHandler(store))
	return r
}

func asUser(r *http.Request, sub, role string) *http.Request {
	ctx := rbac.WithRole(rbac.WithSubject(r.Context(), sub), role)
	return r.WithContext(ctx)
}

func TestSubmitQuizGradesAndRecords(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	body := `{"question_q1":"c-mito","question_q2":false}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/submit", strings.NewReader(body)), "alice", "student")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res SubmitResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "quiz-1", res.QuizID)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 100, res.Percentage)
	assert.Equal(t, "2/2", res.Score)

	a, err := store.GetAttempt(context.Background(), "quiz-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Score)
	assert.Equal(t, 100, a.Percentage)
}

func TestSubmitQuizResubmissionOverwrites(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	submit := func(body string) SubmitResult {
		req := asUser(httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/submit", strings.NewReader(body)), "bob", "student")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res SubmitResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		return res
	}

	first := submit(`{"question_q1":"c-nucl","question_q2":true}`)
	assert.Equal(t, 0, first.CorrectAnswers)

	second := submit(`{"question_q1":"c-mito","question_q2":"false"}`)
	assert.Equal(t, 2, second.CorrectAnswers)

	a, err := store.GetAttempt(context.Background(), "quiz-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Score, "the stored attempt reflects the latest submission")
}

func TestSubmitQuizUnknownQuiz(t *testing.T) {
	store := quiz.NewInMemoryStore()
	router := submitRouter(store)

	req := asUser(httptest.NewRequest(http.MethodPost, "/quizzes/nope/submit", strings.NewReader(`{}`)), "alice", "student")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quiz not found")
}

func TestSubmitQuizRequiresSubject(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/submit", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitQuizBadJSON(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	req := asUser(httptest.NewRequest(http.MethodPost, "/quizzes/quiz-1/submit", strings.NewReader(`{not json`)), "alice", "student")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOwnAttempt(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	req := asUser(httptest.NewRequest(http.MethodGet, "/quizzes/quiz-1/attempt", nil), "alice", "student")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no attempt recorded yet")

	_, err := store.RecordAttempt(context.Background(), "quiz-1", "alice", quiz.GradeSummary{Correct: 1, Total: 2, Percentage: 50})
	require.NoError(t, err)

	req = asUser(httptest.NewRequest(http.MethodGet, "/quizzes/quiz-1/attempt", nil), "alice", "student")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var a quiz.Attempt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&a))
	assert.Equal(t, "alice", a.UserID)
	assert.Equal(t, 50, a.Percentage)
}

func TestListAttemptsScopesStudentsToSelf(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seedQuiz(t, store)
	router := submitRouter(store)

	for _, u := range []string{"alice", "bob"} {
		_, err := store.RecordAttempt(context.Background(), "quiz-1", u, quiz.GradeSummary{Correct: 1, Total: 2, Percentage: 50})
		require.NoError(t, err)
	}

	// A student asking for someone else's attempts still only sees their own.
	req := asUser(httptest.NewRequest(http.MethodGet, "/attempts?user_id=bob", nil), "alice", "student")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []quiz.Attempt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].UserID)

	// Teachers see everything.
	req = asUser(httptest.NewRequest(http.MethodGet, "/attempts", nil), "t1", "teacher")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)
}
