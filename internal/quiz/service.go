package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	classes  map[string]Class
	quizzes  map[string]Quiz
	attempts map[string]Attempt // key: quizID|userID
}

// NewInMemoryStore is used by tests and the offline smoke path.
func NewInMemoryStore() Store {
	return &memoryStore{
		classes:  map[string]Class{},
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
	}
}

func attemptKey(quizID, userID string) string { return quizID + "|" + userID }

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = uuid.NewString()
		}
		for j := range q.Questions[i].Choices {
			if q.Questions[i].Choices[j].ID == "" {
				q.Questions[i].Choices[j].ID = uuid.NewString()
			}
		}
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return q, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	// cascade
	for k, a := range m.attempts {
		if a.QuizID == id {
			delete(m.attempts, k)
		}
	}
	return nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]QuizSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []QuizSummary{}
	for _, q := range m.quizzes {
		if opts.Q != "" && !strings.Contains(strings.ToLower(q.Title), strings.ToLower(opts.Q)) {
			continue
		}
		if opts.ClassID != "" && q.ClassID != opts.ClassID {
			continue
		}
		out = append(out, QuizSummary{
			ID: q.ID, Title: q.Title, ClassID: q.ClassID,
			CompleteBy: q.CompleteBy, CreatedAt: q.CreatedAt,
			QuestionCount: len(q.Questions),
		})
	}
	if opts.Sort == "title" {
		sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}
	return out, nil
}

func (m *memoryStore) ListClasses(_ context.Context) ([]Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Class{}
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutClass exists for test seeding; the SQL store seeds via db.SeedClasses.
func (m *memoryStore) PutClass(c Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.classes[c.ID] = c
}

func (m *memoryStore) RecordAttempt(_ context.Context, quizID, userID string, sum GradeSummary) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[quizID]; !ok {
		return Attempt{}, ErrQuizNotFound
	}
	k := attemptKey(quizID, userID)
	a, ok := m.attempts[k]
	if !ok {
		a = Attempt{ID: uuid.NewString(), QuizID: quizID, UserID: userID}
	}
	a.Score = sum.Correct
	a.TotalQuestions = sum.Total
	a.Percentage = sum.Percentage
	a.CompletedAt = time.Now().Unix()
	m.attempts[k] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, quizID, userID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptKey(quizID, userID)]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt > out[j].CompletedAt })
	return out, nil
}
