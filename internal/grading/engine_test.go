package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
)

func singleChoiceQ(id string, correct string, others ...string) quiz.Question {
	q := quiz.Question{ID: id, Type: quiz.TypeMCQSingle, Text: "pick one"}
	q.Choices = append(q.Choices, quiz.Choice{ID: correct, Text: "right", IsCorrect: true, Position: 0})
	for i, o := range others {
		q.Choices = append(q.Choices, quiz.Choice{ID: o, Text: "wrong", Position: i + 1})
	}
	return q
}

func TestGradeSingleChoice(t *testing.T) {
	e := NewEngine()
	qs := []quiz.Question{singleChoiceQ("q1", "a", "b", "c", "d")}

	cases := []struct {
		name    string
		answers map[string]interface{}
		correct int
	}{
		{"correct id", map[string]interface{}{"question_q1": "a"}, 1},
		{"wrong id", map[string]interface{}{"question_q1": "b"}, 0},
		{"nonexistent id", map[string]interface{}{"question_q1": "zzz"}, 0},
		{"empty string", map[string]interface{}{"question_q1": ""}, 0},
		{"missing answer", map[string]interface{}{}, 0},
		{"wrong shape", map[string]interface{}{"question_q1": []interface{}{"a"}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum := e.Grade(qs, tc.answers)
			assert.Equal(t, tc.correct, sum.Correct)
			assert.Equal(t, 1, sum.Total)
		})
	}
}

func TestGradeSingleChoiceScenario(t *testing.T) {
	// One question, choices A(correct) B C D, answer A -> 1/1, 100%.
	e := NewEngine()
	sum := e.Grade([]quiz.Question{singleChoiceQ("1", "A_id", "B_id", "C_id", "D_id")},
		map[string]interface{}{"question_1": "A_id"})
	assert.Equal(t, Summary{Correct: 1, Total: 1, Percentage: 100}, sum)
}

func TestGradeMultiChoiceExactSet(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{ID: "m1", Type: quiz.TypeMCQMulti, Choices: []quiz.Choice{
		{ID: "A", IsCorrect: true, Position: 0},
		{ID: "B", Position: 1},
		{ID: "C", IsCorrect: true, Position: 2},
		{ID: "D", Position: 3},
	}}
	qs := []quiz.Question{q}

	credit := func(ans interface{}) int {
		return e.Grade(qs, map[string]interface{}{"question_m1": ans}).Correct
	}

	assert.Equal(t, 1, credit([]interface{}{"A", "C"}))
	assert.Equal(t, 1, credit([]interface{}{"C", "A"}), "order must not matter")
	assert.Equal(t, 0, credit([]interface{}{"A", "B", "C"}), "superset is never credited")
	assert.Equal(t, 0, credit([]interface{}{"A"}), "subset is never credited")
	assert.Equal(t, 0, credit([]interface{}{}))
	assert.Equal(t, 0, credit("A"), "non-collection answer")
	// Unknown ids do not resolve to choices; the remaining set still has
	// to equal the correct set.
	assert.Equal(t, 1, credit([]interface{}{"A", "C", "zzz"}))
}

func TestGradeTrueFalseCoercion(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{ID: "t1", Type: quiz.TypeTrueFalse, Choices: []quiz.Choice{
		{ID: "ct", Text: "True", IsCorrect: true, Position: 0},
		{ID: "cf", Text: "False", Position: 1},
	}}
	qs := []quiz.Question{q}

	trueForms := []interface{}{"true", "True", "TRUE", "1", "yes", "YES", true, float64(1), float64(42)}
	for _, v := range trueForms {
		sum := e.Grade(qs, map[string]interface{}{"question_t1": v})
		assert.Equalf(t, 1, sum.Correct, "value %v should coerce to true", v)
	}
	falseForms := []interface{}{"false", "0", "no", "whatever", false, float64(0)}
	for _, v := range falseForms {
		sum := e.Grade(qs, map[string]interface{}{"question_t1": v})
		assert.Equalf(t, 0, sum.Correct, "value %v should coerce to false", v)
	}
}

func TestGradeTrueFalseUsesFirstChoiceByPosition(t *testing.T) {
	e := NewEngine()
	// Choices deliberately out of slice order; position 0 says "false wins".
	q := quiz.Question{ID: "t2", Type: quiz.TypeTrueFalse, Choices: []quiz.Choice{
		{ID: "x", Text: "True", IsCorrect: true, Position: 1},
		{ID: "y", Text: "False", IsCorrect: false, Position: 0},
	}}
	sum := e.Grade([]quiz.Question{q}, map[string]interface{}{"question_t2": "false"})
	assert.Equal(t, 1, sum.Correct)
}

func TestGradeTrueFalseZeroChoices(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{ID: "t3", Type: quiz.TypeTrueFalse}
	for _, v := range []interface{}{"true", "false", true, false} {
		sum := e.Grade([]quiz.Question{q}, map[string]interface{}{"question_t3": v})
		assert.Equal(t, 0, sum.Correct, "a question with no choices can never be correct")
		assert.Equal(t, 1, sum.Total)
	}
}

func TestGradeFreeTextExcluded(t *testing.T) {
	e := NewEngine()
	qs := []quiz.Question{
		{ID: "f1", Type: quiz.TypeFreeText},
		singleChoiceQ("q1", "a", "b"),
	}
	sum := e.Grade(qs, map[string]interface{}{
		"question_f1": "a very thoughtful essay",
		"question_q1": "a",
	})
	assert.Equal(t, 1, sum.Total, "free text must not count toward total")
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 100, sum.Percentage)
}

func TestGradePercentage(t *testing.T) {
	e := NewEngine()

	// No gradable questions -> percentage 0.
	sum := e.Grade([]quiz.Question{{ID: "f", Type: quiz.TypeFreeText}}, nil)
	assert.Equal(t, Summary{Correct: 0, Total: 0, Percentage: 0}, sum)

	// 1 of 3 -> 33.
	qs := []quiz.Question{
		singleChoiceQ("a", "a1", "a2"),
		singleChoiceQ("b", "b1", "b2"),
		singleChoiceQ("c", "c1", "c2"),
	}
	sum = e.Grade(qs, map[string]interface{}{"question_a": "a1"})
	assert.Equal(t, 33, sum.Percentage)

	// Tie-break is half away from zero: 1 of 8 = 12.5% -> 13.
	var eight []quiz.Question
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		eight = append(eight, singleChoiceQ(id, id+"1", id+"2"))
	}
	sum = e.Grade(eight, map[string]interface{}{"question_a": "a1"})
	assert.Equal(t, 13, sum.Percentage)

	require.GreaterOrEqual(t, sum.Percentage, 0)
	require.LessOrEqual(t, sum.Percentage, 100)
}

func TestAnswerKeyFormat(t *testing.T) {
	assert.Equal(t, "question_42", AnswerKey("42"))
}
