package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tahcohcat/newsbreeze/config"
)

// AudioClip is a transient synthesized payload, held only long enough
// to be streamed to the browser (and optionally cached).
type AudioClip struct {
	Audio  []byte
	Format string // "mp3" or "wav"
	Voice  string
}

// Synthesizer is the capability a speech backend provides. Builtin
// voices and voice-cloning backends are interchangeable behind it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) (*AudioClip, error)
	Name() string
}

// SynthesisError is per-request. The caller may retry or change the
// voice without restarting the pipeline.
type SynthesisError struct {
	Voice string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis (voice %s): %v", e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// CacheKey identifies a (text, voice, backend) triple for the clip
// cache. The same request played twice may reuse the stored clip.
func CacheKey(text, voiceID, backend string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + voiceID + "\x00" + backend))
	return hex.EncodeToString(sum[:])
}

// NewSynthesizer creates a speech backend based on the configuration.
func NewSynthesizer(ctx context.Context, cfg *config.TtsConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogleTTS(ctx, cfg.CredentialsFile)
	case "clone":
		return NewCloneClient(cfg)
	case "dummy":
		return NewDummyTTS(), nil
	default:
		return nil, fmt.Errorf("unsupported tts provider: %s", cfg.Provider)
	}
}
