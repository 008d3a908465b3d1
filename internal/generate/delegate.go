package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
)

// promptBudget caps how much extracted text rides along in the prompt.
const promptBudget = 4000

// Delegate produces question drafts from the full extracted text. Implemented
// by the external generative-text client; nil means heuristic-only.
type Delegate interface {
	Generate(ctx context.Context, text string, mcqCount, tfCount, textCount int) ([]quiz.Draft, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint. The
// credential is injected configuration, never embedded.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c, model: model}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// draftItem is the wire shape the service is instructed to emit.
type draftItem struct {
	Text    string `json:"text"`
	Type    string `json:"type"`
	Choices []struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, text string, mcqCount, tfCount, textCount int) ([]quiz.Draft, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write quiz questions. Reply with a JSON array only, no prose, no markdown."},
			{Role: "user", Content: buildPrompt(text, mcqCount, tfCount, textCount)},
		},
		Temperature: 0.2,
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("generation service returned %d", resp.StatusCode())
	}
	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("generation service returned no choices")
	}

	var items []draftItem
	if err := json.Unmarshal([]byte(stripFences(cr.Choices[0].Message.Content)), &items); err != nil {
		return nil, err
	}
	out := make([]quiz.Draft, 0, len(items))
	for _, it := range items {
		d := quiz.Draft{Text: strings.TrimSpace(it.Text), Type: normalizeType(it.Type)}
		for i, ch := range it.Choices {
			d.Choices = append(d.Choices, quiz.DraftChoice{Text: ch.Text, IsCorrect: ch.IsCorrect, Position: i})
		}
		out = append(out, d)
	}
	return out, nil
}

func buildPrompt(text string, mcqCount, tfCount, textCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate quiz questions from the passage below: "+
		"exactly %d of type %q (4 choices, one is_correct), "+
		"exactly %d of type %q (choices True and False), "+
		"and exactly %d of type %q (no choices).\n",
		mcqCount, quiz.TypeMCQSingle, tfCount, quiz.TypeTrueFalse, textCount, quiz.TypeFreeText)
	sb.WriteString(`Output a JSON array of objects: {"text","type","choices":[{"text","is_correct"}]}.` + "\n\nPassage:\n")
	sb.WriteString(truncateRunes(text, promptBudget))
	return sb.String()
}

// normalizeType maps common aliases onto the canonical question types;
// anything unrecognized is left as-is and dropped by the quota filter.
func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case quiz.TypeMCQSingle, "mcq", "multiple_choice", "multiple-choice":
		return quiz.TypeMCQSingle
	case quiz.TypeTrueFalse, "truefalse", "true/false", "tf":
		return quiz.TypeTrueFalse
	case quiz.TypeFreeText, "text", "open", "open_ended":
		return quiz.TypeFreeText
	}
	return strings.TrimSpace(t)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
