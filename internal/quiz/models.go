package quiz

// Question types. free_text answers are collected but never auto-graded.
const (
	TypeMCQSingle = "mcq_single"
	TypeMCQMulti  = "mcq_multi"
	TypeFreeText  = "free_text"
	TypeTrueFalse = "true_false"
)

func ValidType(t string) bool {
	switch t {
	case TypeMCQSingle, TypeMCQMulti, TypeFreeText, TypeTrueFalse:
		return true
	}
	return false
}

type Class struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Position  int    `json:"position"`
}

type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Position int      `json:"position"`
	Choices  []Choice `json:"choices,omitempty"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ClassID     string     `json:"class_id,omitempty"`
	CompleteBy  int64      `json:"complete_by,omitempty"` // unix seconds, 0 = no deadline
	CreatedAt   int64      `json:"created_at,omitempty"`
	Questions   []Question `json:"questions"`
}

type QuizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ClassID       string `json:"class_id,omitempty"`
	ClassName     string `json:"class_name,omitempty"`
	CompleteBy    int64  `json:"complete_by,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	QuestionCount int    `json:"question_count"`
}

// Attempt is one learner's recorded outcome for one quiz. At most one row
// exists per (user, quiz); re-submission overwrites it.
type Attempt struct {
	ID             string `json:"id"`
	QuizID         string `json:"quiz_id"`
	UserID         string `json:"user_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Percentage     int    `json:"percentage"`
	CompletedAt    int64  `json:"completed_at"`
}

// DraftChoice / Draft are generation-pipeline output: not attached to any
// quiz until the authoring layer persists them.
type DraftChoice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Position  int    `json:"position"`
}

type Draft struct {
	Text     string        `json:"text"`
	Type     string        `json:"type"`
	Position int           `json:"position"`
	Choices  []DraftChoice `json:"choices,omitempty"`
}
