package summarizer

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Summarizer is the capability a summarization backend provides.
// Local-model and hosted-API implementations are interchangeable.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Name() string
}

// SummarizationError is per-headline and non-fatal: the caller still
// shows the untreated text.
type SummarizationError struct {
	Provider string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization (%s): %v", e.Provider, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// Clean strips HTML markup and entities and collapses whitespace so
// length checks and the backend see plain prose.
func Clean(text string) string {
	text = stripPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Truncate cuts text at a word boundary at or below max characters,
// appending an ellipsis when anything was removed.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := text[:max-3]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}

// Service wraps a backend with the input/output policy: empty and
// too-short inputs are returned unchanged without a backend call, and
// replies are bounded by the configured maximum length.
type Service struct {
	backend   Summarizer
	minInput  int
	maxLength int
}

func NewService(backend Summarizer, minInput, maxLength int) *Service {
	if minInput <= 0 {
		minInput = 50
	}
	if maxLength <= 0 {
		maxLength = 150
	}
	return &Service{backend: backend, minInput: minInput, maxLength: maxLength}
}

func (s *Service) Provider() string {
	return s.backend.Name()
}

func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	clean := Clean(text)
	if clean == "" {
		return "", nil
	}
	if len(clean) < s.minInput {
		return clean, nil
	}

	summary, err := s.backend.Summarize(ctx, clean)
	if err != nil {
		return "", &SummarizationError{Provider: s.backend.Name(), Err: err}
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		// Some backends reply with nothing for degenerate inputs.
		// A truncated original is still a usable summary.
		return Truncate(clean, s.maxLength), nil
	}
	return Truncate(summary, s.maxLength), nil
}
