package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/feed"
	"github.com/tahcohcat/newsbreeze/internal/logger"
	"github.com/tahcohcat/newsbreeze/internal/session"
	"github.com/tahcohcat/newsbreeze/internal/summarizer"
	"github.com/tahcohcat/newsbreeze/internal/tts"
	"github.com/tahcohcat/newsbreeze/internal/websocket"
)

// Fetcher, Summarizer and Speaker are the component boundaries the
// handlers talk across. Errors crossing them become status text, never
// a dead session.
type Fetcher interface {
	Fetch(ctx context.Context, sources []config.FeedSource) ([]feed.Headline, []*feed.FetchError)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Provider() string
}

type Speaker interface {
	Speak(ctx context.Context, text, voice string) (*tts.AudioClip, tts.Resolution, error)
	Registry() *tts.Registry
}

type Broadcaster interface {
	Broadcast(websocket.StatusEvent)
}

type Handler struct {
	cfg        *config.Config
	fetcher    Fetcher
	summarizer Summarizer
	speaker    Speaker // nil when speech is not configured
	sessions   *session.Store
	hub        Broadcaster
	logger     *logger.Log

	mu        sync.Mutex
	headlines []feed.Headline
	fetchErrs []*feed.FetchError
}

func NewHandler(cfg *config.Config, fetcher Fetcher, sum Summarizer, speaker Speaker, sessions *session.Store, hub Broadcaster) *Handler {
	return &Handler{
		cfg:        cfg,
		fetcher:    fetcher,
		summarizer: sum,
		speaker:    speaker,
		sessions:   sessions,
		hub:        hub,
		logger:     logger.New(),
	}
}

func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/headlines", h.ListHeadlines).Methods("GET")
	r.HandleFunc("/refresh", h.Refresh).Methods("POST")
	r.HandleFunc("/headlines/{id}/summarize", h.SummarizeHeadline).Methods("POST")
	r.HandleFunc("/speak", h.Speak).Methods("POST")
	r.HandleFunc("/voices", h.ListVoices).Methods("GET")
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.PutPreferences).Methods("PUT")
}

// GET /api/v1/headlines - current headline list with inline feed errors
func (h *Handler) ListHeadlines(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := HeadlinesResponse{
		Headlines: append([]feed.Headline(nil), h.headlines...),
		Errors:    feedErrorStatuses(h.fetchErrs),
	}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/refresh - refetch the configured sources, replacing the
// headline list in place
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil {
		// An empty body means "all sources, no filter".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sources := h.selectSources(req.Sources)
	if len(sources) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no matching sources configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	h.broadcast(websocket.StatusEvent{Stage: "fetching"})

	headlines, fetchErrs := h.fetcher.Fetch(ctx, sources)
	headlines = feed.LimitPerSource(headlines, req.Limit)
	headlines = feed.FilterByKeywords(headlines, req.Keywords)
	feed.SortByPublished(headlines)

	h.mu.Lock()
	h.headlines = headlines
	h.fetchErrs = fetchErrs
	h.mu.Unlock()

	for _, fe := range fetchErrs {
		h.logger.WithError(fe).Warn("feed error during refresh")
	}
	h.broadcast(websocket.StatusEvent{Stage: "ready", Detail: fmt.Sprintf("%d headlines", len(headlines))})

	writeJSON(w, http.StatusOK, HeadlinesResponse{
		Headlines: headlines,
		Errors:    feedErrorStatuses(fetchErrs),
	})
}

// POST /api/v1/headlines/{id}/summarize - summarize one headline.
// Backend failure degrades to the untreated text with an annotation.
func (h *Handler) SummarizeHeadline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	headline, ok := h.findHeadline(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "headline not found"})
		return
	}

	text := headline.Description
	if text == "" {
		text = headline.Title
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	h.broadcast(websocket.StatusEvent{HeadlineID: id, Stage: "summarizing"})

	summary, err := h.summarizer.Summarize(ctx, text)
	if err != nil {
		var sumErr *summarizer.SummarizationError
		detail := "summarization failed"
		if errors.As(err, &sumErr) {
			detail = sumErr.Error()
		}
		h.logger.WithError(err).Warn("summarization failed, showing untreated text")
		h.broadcast(websocket.StatusEvent{HeadlineID: id, Stage: "error", Detail: detail})

		writeJSON(w, http.StatusOK, SummarizeResponse{
			ID:       id,
			Summary:  summarizer.Clean(text),
			Degraded: true,
			Error:    detail,
		})
		return
	}

	h.broadcast(websocket.StatusEvent{HeadlineID: id, Stage: "ready"})
	writeJSON(w, http.StatusOK, SummarizeResponse{
		ID:       id,
		Summary:  summary,
		Provider: h.summarizer.Provider(),
	})
}

// POST /api/v1/speak - synthesize text and stream the audio payload
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.speaker == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "speech is not configured"})
		return
	}

	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Voice == "" {
		req.Voice = h.sessions.Get(r).Voice
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	h.broadcast(websocket.StatusEvent{Stage: "synthesizing", Detail: req.Voice})

	clip, res, err := h.speaker.Speak(ctx, req.Text, req.Voice)
	if err != nil {
		h.logger.WithError(err).Error("synthesis failed")
		h.broadcast(websocket.StatusEvent{Stage: "error", Detail: err.Error()})
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	h.broadcast(websocket.StatusEvent{Stage: "ready", Detail: res.Voice.ID})

	w.Header().Set("Content-Type", audioContentType(clip.Format))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Voice-Used", res.Voice.ID)
	if res.FellBack {
		note := fmt.Sprintf("unknown voice %q, used default", req.Voice)
		if res.Suggestion != "" {
			note += fmt.Sprintf(" (closest match: %s)", res.Suggestion)
		}
		w.Header().Set("X-Voice-Note", note)
	}
	w.Write(clip.Audio)
}

// GET /api/v1/voices - voice list for the picker
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	if h.speaker == nil {
		writeJSON(w, http.StatusOK, VoicesResponse{})
		return
	}
	registry := h.speaker.Registry()
	writeJSON(w, http.StatusOK, VoicesResponse{
		Voices:  registry.List(),
		Default: registry.Default().ID,
	})
}

// GET /api/v1/preferences - session-scoped voice and source selection
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Get(r))
}

// PUT /api/v1/preferences
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs session.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if err := h.sessions.Save(w, r, prefs); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to save preferences"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) findHeadline(id string) (feed.Headline, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, hl := range h.headlines {
		if hl.ID == id {
			return hl, true
		}
	}
	return feed.Headline{}, false
}

// selectSources maps requested source names onto the configured feeds.
// An empty request means every configured source.
func (h *Handler) selectSources(names []string) []config.FeedSource {
	if len(names) == 0 {
		return h.cfg.Feeds.Sources
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []config.FeedSource
	for _, src := range h.cfg.Feeds.Sources {
		if wanted[src.Name] {
			selected = append(selected, src)
		}
	}
	return selected
}

func (h *Handler) broadcast(ev websocket.StatusEvent) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

func feedErrorStatuses(errs []*feed.FetchError) []FeedErrorStatus {
	out := make([]FeedErrorStatus, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FeedErrorStatus{Source: fe.Source, URL: fe.URL, Message: fe.Err.Error()})
	}
	return out
}

func audioContentType(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
