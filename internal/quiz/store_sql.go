package quiz

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var classID interface{}
	if q.ClassID != "" {
		classID = q.ClassID
	}
	var completeBy interface{}
	if q.CompleteBy != 0 {
		completeBy = q.CompleteBy
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO quizzes (id,title,description,class_id,complete_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			class_id=EXCLUDED.class_id, complete_by=EXCLUDED.complete_by`,
		q.ID, q.Title, q.Description, classID, completeBy, time.Now().Unix())
	if err != nil {
		return err
	}

	// Wholesale replace: drop the prior question subtree (choices cascade).
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id=$1`, q.ID); err != nil {
		return err
	}
	for _, qu := range q.Questions {
		qid := qu.ID
		if qid == "" {
			qid = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id,quiz_id,text,qtype,position)
			VALUES ($1,$2,$3,$4,$5)`, qid, q.ID, qu.Text, qu.Type, qu.Position); err != nil {
			return err
		}
		for _, c := range qu.Choices {
			cid := c.ID
			if cid == "" {
				cid = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO choices (id,question_id,text,is_correct,position)
				VALUES ($1,$2,$3,$4,$5)`, cid, qid, c.Text, c.IsCorrect, c.Position); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	var q Quiz
	var classID sql.NullString
	var completeBy sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,class_id,complete_by,created_at
		FROM quizzes WHERE id=$1`, id)
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &classID, &completeBy, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	q.ClassID = classID.String
	q.CompleteBy = completeBy.Int64

	rows, err := s.db.QueryContext(ctx, `SELECT id,text,qtype,position FROM questions
		WHERE quiz_id=$1 ORDER BY position, id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	byID := map[string]int{}
	for rows.Next() {
		var qu Question
		if err := rows.Scan(&qu.ID, &qu.Text, &qu.Type, &qu.Position); err != nil {
			return Quiz{}, err
		}
		byID[qu.ID] = len(q.Questions)
		q.Questions = append(q.Questions, qu)
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}

	crows, err := s.db.QueryContext(ctx, `SELECT c.id,c.question_id,c.text,c.is_correct,c.position
		FROM choices c JOIN questions qn ON qn.id=c.question_id
		WHERE qn.quiz_id=$1 ORDER BY c.position, c.id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer crows.Close()
	for crows.Next() {
		var c Choice
		var qid string
		if err := crows.Scan(&c.ID, &qid, &c.Text, &c.IsCorrect, &c.Position); err != nil {
			return Quiz{}, err
		}
		if i, ok := byID[qid]; ok {
			q.Questions[i].Choices = append(q.Questions[i].Choices, c)
		}
	}
	return q, crows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	order := "q.created_at DESC"
	if opts.Sort == "title" {
		order = "q.title ASC"
	}
	query := `SELECT q.id, q.title, COALESCE(q.class_id,''), COALESCE(c.name,''),
			COALESCE(q.complete_by,0), q.created_at,
			(SELECT COUNT(*) FROM questions qn WHERE qn.quiz_id=q.id)
		FROM quizzes q LEFT JOIN classes c ON c.id=q.class_id WHERE 1=1`
	args := []interface{}{}
	if opts.Q != "" {
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
		query += ` AND LOWER(q.title) LIKE $` + itoa(len(args))
	}
	if opts.ClassID != "" {
		args = append(args, opts.ClassID)
		query += ` AND q.class_id=$` + itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	query += ` ORDER BY ` + order + ` LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizSummary{}
	for rows.Next() {
		var sm QuizSummary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.ClassID, &sm.ClassName,
			&sm.CompleteBy, &sm.CreatedAt, &sm.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,description,created_at FROM classes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Class{}
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordAttempt is an atomic upsert on (quiz_id, user_id): concurrent
// submissions for the same pair cannot create two rows; the later one
// overwrites the earlier.
func (s *SQLStore) RecordAttempt(ctx context.Context, quizID, userID string, sum GradeSummary) (Attempt, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, quizID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrQuizNotFound
		}
		return Attempt{}, err
	}

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,score,total_questions,percentage,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (quiz_id,user_id) DO UPDATE SET score=EXCLUDED.score,
			total_questions=EXCLUDED.total_questions, percentage=EXCLUDED.percentage,
			completed_at=EXCLUDED.completed_at`,
		uuid.NewString(), quizID, userID, sum.Correct, sum.Total, sum.Percentage, now)
	if err != nil {
		if isUniqueViolation(err) {
			return Attempt{}, ErrAttemptConflict
		}
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, quizID, userID)
}

func (s *SQLStore) GetAttempt(ctx context.Context, quizID, userID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,score,total_questions,percentage,completed_at
		FROM attempts WHERE quiz_id=$1 AND user_id=$2`, quizID, userID)
	var a Attempt
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.TotalQuestions, &a.Percentage, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	query := `SELECT id,quiz_id,user_id,score,total_questions,percentage,completed_at FROM attempts WHERE 1=1`
	args := []interface{}{}
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		query += ` AND quiz_id=$` + itoa(len(args))
	}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		query += ` AND user_id=$` + itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	query += ` ORDER BY completed_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.TotalQuestions, &a.Percentage, &a.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite + postgres
		strings.Contains(msg, "duplicate key") // postgres 23505
}

func itoa(n int) string { return strconv.Itoa(n) }
