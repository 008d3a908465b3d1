package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Niraeuru/ClassroomConnect/internal/grading"
	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
	"github.com/Niraeuru/ClassroomConnect/internal/rbac"
	syncx "github.com/Niraeuru/ClassroomConnect/internal/sync"
)

// SubmitResult is the grading summary returned to the learner.
type SubmitResult struct {
	QuizID         string `json:"quiz_id"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Percentage     int    `json:"percentage"`
	Score          string `json:"score"` // "correct/total"
}

// POST /quizzes/{quizID}/submit grades the raw answer map
// {"question_<id>": <value>}, upserts the single attempt row for
// (user, quiz), and returns the summary. events may be nil.
func SubmitQuizHandler(store quiz.Store, engine *grading.Engine, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var answers map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		q, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			quizErr(w, err)
			return
		}

		sum := engine.Grade(q.Questions, answers)
		a, err := store.RecordAttempt(r.Context(), quizID, userID, quiz.GradeSummary{
			Correct:    sum.Correct,
			Total:      sum.Total,
			Percentage: sum.Percentage,
		})
		if err != nil {
			if errors.Is(err, quiz.ErrAttemptConflict) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			quizErr(w, err)
			return
		}

		if events != nil {
			data, _ := json.Marshal(a)
			_ = events.Append(r.Context(), syncx.Event{
				Type: syncx.EventAttemptRecorded, Key: a.ID, DataJSON: string(data),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SubmitResult{
			QuizID:         quizID,
			TotalQuestions: sum.Total,
			CorrectAnswers: sum.Correct,
			Percentage:     sum.Percentage,
			Score:          fmt.Sprintf("%d/%d", sum.Correct, sum.Total),
		})
	}
}

// GET /quizzes/{quizID}/attempt returns the caller's own attempt, if any.
func GetOwnAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "quizID"), userID)
		if err != nil {
			if errors.Is(err, quiz.ErrAttemptNotFound) {
				http.Error(w, "no attempt yet", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts?quiz_id=...&user_id=...&limit=50&offset=0
// Roles without attempt:view-all are forced to their own attempts.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		userID := r.URL.Query().Get("user_id")
		if role != "admin" && role != "teacher" {
			userID = rbac.SubjectFromContext(r.Context())
		}
		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: r.URL.Query().Get("quiz_id"),
			UserID: userID,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
