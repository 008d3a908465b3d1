package grading

import "strings"

// Kind tags the parsed shape of a learner's raw answer value. The submission
// payload is JSON, so the same logical field arrives as string, array,
// number or bool depending on the question type.
type Kind int

const (
	KindNone Kind = iota // missing or unusable; grades as incorrect
	KindSingleID
	KindIDList
	KindFreeText
	KindBoolLike
)

type Answer struct {
	Kind Kind
	ID   string
	IDs  []string
	Text string
	Bool bool
}

// ParseAnswer coerces a raw JSON value into the tagged shape the question
// type expects. Anything that does not fit becomes KindNone, never an error.
func ParseAnswer(qtype string, raw interface{}) Answer {
	if raw == nil {
		return Answer{Kind: KindNone}
	}
	switch qtype {
	case "mcq_single":
		if s, ok := raw.(string); ok && s != "" {
			return Answer{Kind: KindSingleID, ID: s}
		}
	case "mcq_multi":
		if ids, ok := toStringSlice(raw); ok {
			return Answer{Kind: KindIDList, IDs: ids}
		}
	case "free_text":
		if s, ok := raw.(string); ok {
			return Answer{Kind: KindFreeText, Text: s}
		}
	case "true_false":
		switch v := raw.(type) {
		case bool:
			return Answer{Kind: KindBoolLike, Bool: v}
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes":
				return Answer{Kind: KindBoolLike, Bool: true}
			default:
				return Answer{Kind: KindBoolLike, Bool: false}
			}
		case float64: // JSON numbers decode as float64
			return Answer{Kind: KindBoolLike, Bool: v != 0}
		case int:
			return Answer{Kind: KindBoolLike, Bool: v != 0}
		}
	}
	return Answer{Kind: KindNone}
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
