package quiz

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niraeuru/ClassroomConnect/internal/db"
)

func openSQLiteStore(t *testing.T) (*sql.DB, *SQLStore) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "cc.db") + "?mode=rwc&_pragma=busy_timeout(5000)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	// Hand every statement a fresh connection so nothing depends on
	// per-connection state set up during schema creation.
	dbh.SetMaxIdleConns(0)
	t.Cleanup(func() { dbh.Close() })
	return dbh, NewSQLStore(dbh, "sqlite")
}

func seedUser(t *testing.T, dbh *sql.DB, id string) {
	t.Helper()
	_, err := dbh.Exec(`INSERT INTO users (id, username, role, created_at)
		VALUES ($1,$1,'student',$2)`, id, time.Now().Unix())
	require.NoError(t, err)
}

func tableCount(t *testing.T, dbh *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, dbh.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func mathQuiz(id string) Quiz {
	return Quiz{
		ID:    id,
		Title: "algebra",
		Questions: []Question{{
			ID: "q1", Text: "2+2?", Type: TypeMCQSingle,
			Choices: []Choice{
				{ID: "c1", Text: "4", IsCorrect: true},
				{ID: "c2", Text: "5", Position: 1},
			},
		}},
	}
}

func TestSQLiteDeleteQuizCascades(t *testing.T) {
	dbh, s := openSQLiteStore(t)
	ctx := context.Background()

	seedUser(t, dbh, "alice")
	require.NoError(t, s.PutQuiz(ctx, mathQuiz("quiz-1")))
	_, err := s.RecordAttempt(ctx, "quiz-1", "alice", GradeSummary{Correct: 1, Total: 1, Percentage: 100})
	require.NoError(t, err)

	require.NoError(t, s.DeleteQuiz(ctx, "quiz-1"))

	assert.Equal(t, 0, tableCount(t, dbh, "questions"))
	assert.Equal(t, 0, tableCount(t, dbh, "choices"))
	assert.Equal(t, 0, tableCount(t, dbh, "attempts"))

	list, err := s.ListAttempts(ctx, AttemptListOpts{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Empty(t, list, "deleting a quiz must not leave attempts behind")
}

func TestSQLiteDeleteUserCascadesAttempts(t *testing.T) {
	dbh, s := openSQLiteStore(t)
	ctx := context.Background()

	seedUser(t, dbh, "bob")
	require.NoError(t, s.PutQuiz(ctx, mathQuiz("quiz-1")))
	_, err := s.RecordAttempt(ctx, "quiz-1", "bob", GradeSummary{Correct: 0, Total: 1, Percentage: 0})
	require.NoError(t, err)

	_, err = dbh.Exec(`DELETE FROM users WHERE id=$1`, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, tableCount(t, dbh, "attempts"))
}

func TestSQLitePutQuizReplaceKeepsChoiceIDs(t *testing.T) {
	dbh, s := openSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutQuiz(ctx, mathQuiz("quiz-1")))
	// An edit that round-trips the existing question and choice ids must
	// not collide with the rows it is replacing.
	edited := mathQuiz("quiz-1")
	edited.Questions[0].Choices[1].Text = "22"
	require.NoError(t, s.PutQuiz(ctx, edited))

	assert.Equal(t, 1, tableCount(t, dbh, "questions"))
	assert.Equal(t, 2, tableCount(t, dbh, "choices"))

	got, err := s.GetQuiz(ctx, "quiz-1")
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	require.Len(t, got.Questions[0].Choices, 2)
	assert.Equal(t, "22", got.Questions[0].Choices[1].Text)
}
