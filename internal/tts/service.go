package tts

import (
	"context"
	"fmt"

	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// ClipCache stores synthesized clips between identical requests. The
// backend may be non-deterministic, so a cached clip is an acceptable
// stand-in, never a required one.
type ClipCache interface {
	Get(key string) (audio []byte, format string, ok bool)
	Put(key, voice, format string, audio []byte) error
}

// Resolution reports which voice actually rendered a request.
type Resolution struct {
	Voice      Voice
	FellBack   bool
	Suggestion string
}

// Service resolves voice identifiers, caps text length, consults the
// clip cache and wraps backend failures as SynthesisError.
type Service struct {
	backend  Synthesizer
	registry *Registry
	cache    ClipCache // may be nil
	logger   *logger.Log
	maxChars int
}

func NewService(backend Synthesizer, registry *Registry, cache ClipCache, maxChars int) *Service {
	if maxChars <= 0 {
		maxChars = 3000
	}
	return &Service{
		backend:  backend,
		registry: registry,
		cache:    cache,
		logger:   logger.New(),
		maxChars: maxChars,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Speak synthesizes text with the named voice. Unknown or missing
// voice identifiers fall back to the default voice rather than failing.
func (s *Service) Speak(ctx context.Context, text, voiceID string) (*AudioClip, Resolution, error) {
	voice, matched := s.registry.Resolve(voiceID)
	res := Resolution{Voice: voice, FellBack: !matched && voiceID != ""}
	if res.FellBack {
		res.Suggestion = s.registry.Suggest(voiceID)
		s.logger.Warn(fmt.Sprintf("unknown voice %q, using default %s", voiceID, voice.ID))
	}

	if text == "" {
		return nil, res, &SynthesisError{Voice: voice.ID, Err: fmt.Errorf("nothing to read")}
	}
	if len(text) > s.maxChars {
		text = text[:s.maxChars] + "..."
	}

	key := CacheKey(text, voice.ID, s.backend.Name())
	if s.cache != nil {
		if audio, format, ok := s.cache.Get(key); ok {
			s.logger.Debug(fmt.Sprintf("clip cache hit for voice %s", voice.ID))
			return &AudioClip{Audio: audio, Format: format, Voice: voice.ID}, res, nil
		}
	}

	clip, err := s.backend.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, res, &SynthesisError{Voice: voice.ID, Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Put(key, voice.ID, clip.Format, clip.Audio); err != nil {
			s.logger.WithError(err).Warn("failed to cache audio clip")
		}
	}

	return clip, res, nil
}
