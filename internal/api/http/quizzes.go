package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
	"github.com/Niraeuru/ClassroomConnect/internal/rbac"
)

var validate = validator.New()

type choicePayload struct {
	Text      string `json:"text" validate:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
	Position  int    `json:"position"`
}

type questionPayload struct {
	Text     string          `json:"text" validate:"required,max=500"`
	Type     string          `json:"type" validate:"required,oneof=mcq_single mcq_multi free_text true_false"`
	Position int             `json:"position"`
	Choices  []choicePayload `json:"choices" validate:"dive"`
}

type quizPayload struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description"`
	ClassID     string            `json:"class_id"`
	CompleteBy  int64             `json:"complete_by"`
	Questions   []questionPayload `json:"questions" validate:"required,min=1,dive"`
}

func (p quizPayload) toModel(id string) quiz.Quiz {
	q := quiz.Quiz{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		ClassID:     p.ClassID,
		CompleteBy:  p.CompleteBy,
	}
	fillQuestions := allZeroQuestionPositions(p.Questions)
	for i, qp := range p.Questions {
		qu := quiz.Question{Text: qp.Text, Type: qp.Type, Position: qp.Position}
		if fillQuestions {
			qu.Position = i
		}
		fillChoices := allZeroChoicePositions(qp.Choices)
		for j, cp := range qp.Choices {
			c := quiz.Choice{Text: cp.Text, IsCorrect: cp.IsCorrect, Position: cp.Position}
			if fillChoices {
				c.Position = j
			}
			qu.Choices = append(qu.Choices, c)
		}
		q.Questions = append(q.Questions, qu)
	}
	return q
}

// The position field is optional: a payload that never sets it gets
// insertion order, while any explicit position (including an explicit 0
// alongside nonzero ones) is stored untouched.
func allZeroQuestionPositions(qs []questionPayload) bool {
	for _, q := range qs {
		if q.Position != 0 {
			return false
		}
	}
	return true
}

func allZeroChoicePositions(cs []choicePayload) bool {
	for _, c := range cs {
		if c.Position != 0 {
			return false
		}
	}
	return true
}

// POST /quizzes
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p quizPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q := p.toModel("")
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		saved, err := store.GetQuiz(r.Context(), q.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(saved)
	}
}

// PUT /quizzes/{quizID} replaces the whole question subtree.
func UpdateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		if _, err := store.GetQuiz(r.Context(), id); err != nil {
			quizErr(w, err)
			return
		}
		var p quizPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.PutQuiz(r.Context(), p.toModel(id)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		saved, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(saved)
	}
}

// GET /quizzes/{quizID} returns one quiz; correctness flags are stripped for students.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			quizErr(w, err)
			return
		}
		if rbac.RoleFromContext(r.Context()) == "student" {
			q = quiz.StripAnswers(q)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q)
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			quizErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /quizzes?q=...&class_id=...&limit=50&offset=0&sort=created_at
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			Q:       strings.TrimSpace(r.URL.Query().Get("q")),
			ClassID: strings.TrimSpace(r.URL.Query().Get("class_id")),
			Limit:   parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:  parseIntDefault(r.URL.Query().Get("offset"), 0),
			Sort:    strings.TrimSpace(r.URL.Query().Get("sort")),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /classes
func ListClassesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListClasses(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func quizErr(w http.ResponseWriter, err error) {
	if errors.Is(err, quiz.ErrQuizNotFound) {
		http.Error(w, "Quiz not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
