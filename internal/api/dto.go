package api

import (
	"github.com/tahcohcat/newsbreeze/internal/feed"
	"github.com/tahcohcat/newsbreeze/internal/tts"
)

// FeedErrorStatus is a per-feed failure rendered inline next to the
// headline list instead of failing the refresh.
type FeedErrorStatus struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type HeadlinesResponse struct {
	Headlines []feed.Headline   `json:"headlines"`
	Errors    []FeedErrorStatus `json:"errors,omitempty"`
}

type RefreshRequest struct {
	Sources  []string `json:"sources,omitempty"`  // subset of configured source names
	Keywords []string `json:"keywords,omitempty"` // optional filter
	Limit    int      `json:"limit,omitempty"`    // max headlines per source
}

type SummarizeResponse struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Provider string `json:"provider,omitempty"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

type SpeakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type VoicesResponse struct {
	Voices  []tts.Voice `json:"voices"`
	Default string      `json:"default"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
