package generate

import (
	"context"
	"log"
	"strings"

	"github.com/Niraeuru/ClassroomConnect/internal/extract"
	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
)

// Service is the document-to-drafts pipeline: extract text, split sentences,
// then generate via the delegate when one is configured, falling back to the
// heuristic generator for any delegate failure or shortfall.
type Service struct {
	delegate Delegate // nil selects the heuristic-only path
}

func NewService(d Delegate) *Service { return &Service{delegate: d} }

// FromDocument runs the whole pipeline for one upload. Extraction errors
// (unsupported type, unreadable bytes, insufficient text) abort the request;
// delegate errors never do.
func (s *Service) FromDocument(ctx context.Context, filename string, data []byte, mcqCount, tfCount, textCount int) ([]quiz.Draft, error) {
	if !extract.SupportedExt(filename) {
		return nil, extract.ErrUnsupportedType
	}
	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, err
	}
	sentences, err := extract.SplitSentences(text)
	if err != nil {
		return nil, err
	}

	if s.delegate != nil {
		drafts, derr := s.delegated(ctx, text, sentences, mcqCount, tfCount, textCount)
		if derr == nil {
			return drafts, nil
		}
		// Treat every delegate failure as "service unavailable" and keep going.
		log.Printf("generate: delegate unavailable, using heuristic: %v", derr)
	}
	return Heuristic(sentences, mcqCount, tfCount, textCount), nil
}

// delegated asks the external service for drafts, accepts items only while
// their type quota is unfilled, repairs broken true/false items, and fills
// any per-type shortfall from the heuristic generator over the same
// sentences. Accepted items keep the service's emission order; fills are
// appended and the whole list is renumbered.
func (s *Service) delegated(ctx context.Context, text string, sentences []string, mcqCount, tfCount, textCount int) ([]quiz.Draft, error) {
	items, err := s.delegate.Generate(ctx, text, mcqCount, tfCount, textCount)
	if err != nil {
		return nil, err
	}
	quota := map[string]int{
		quiz.TypeMCQSingle: mcqCount,
		quiz.TypeTrueFalse: tfCount,
		quiz.TypeFreeText:  textCount,
	}
	accepted := []quiz.Draft{}
	for _, d := range items {
		if d.Text == "" || quota[d.Type] <= 0 {
			continue
		}
		if d.Type == quiz.TypeTrueFalse {
			d = repairTrueFalse(d)
		}
		quota[d.Type]--
		accepted = append(accepted, d)
	}

	fill := Heuristic(sentences,
		quota[quiz.TypeMCQSingle], quota[quiz.TypeTrueFalse], quota[quiz.TypeFreeText])
	accepted = append(accepted, fill...)
	Renumber(accepted)
	return accepted, nil
}

// repairTrueFalse replaces a missing or short choice list with the canonical
// True/False pair, keeping whatever truth value the item already asserted.
func repairTrueFalse(d quiz.Draft) quiz.Draft {
	if len(d.Choices) >= 2 {
		return d
	}
	truth := true
	for _, c := range d.Choices {
		if c.IsCorrect && strings.EqualFold(c.Text, "false") {
			truth = false
		}
	}
	d.Choices = trueFalseChoices(truth)
	return d
}
