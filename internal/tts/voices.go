package tts

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/tahcohcat/newsbreeze/config"
)

// Voice is a selectable voice identity: either a builtin backend model
// or a reference sample used for cloning.
type Voice struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Model    string `json:"model,omitempty"`
	Sample   string `json:"-"`
}

func (v Voice) IsClone() bool {
	return v.Sample != ""
}

// Registry maps voice identifiers to voices. The mapping is explicit
// and validated at startup: a clone voice whose sample file is missing
// is a ConfigurationError, not a silent later failure.
type Registry struct {
	voices    map[string]Voice
	order     []string
	defaultID string
	matcher   *closestmatch.ClosestMatch
}

func NewRegistry(cfg *config.TtsConfig) (*Registry, error) {
	voices := voicesFromConfig(cfg)
	if len(voices) == 0 {
		voices = defaultVoices()
	}

	r := &Registry{voices: make(map[string]Voice, len(voices))}
	for _, v := range voices {
		if v.ID == "" {
			return nil, &config.ConfigurationError{Field: "tts.voices", Message: "every voice needs an id"}
		}
		if v.IsClone() {
			if _, err := os.Stat(v.Sample); err != nil {
				return nil, &config.ConfigurationError{
					Field:   "tts.voices." + v.ID,
					Message: fmt.Sprintf("reference sample %s not readable: %v", v.Sample, err),
				}
			}
		}
		if _, dup := r.voices[v.ID]; dup {
			return nil, &config.ConfigurationError{Field: "tts.voices", Message: "duplicate voice id " + v.ID}
		}
		r.voices[v.ID] = v
		r.order = append(r.order, v.ID)
	}

	r.defaultID = cfg.DefaultVoice
	if r.defaultID == "" {
		r.defaultID = r.order[0]
	}
	if _, ok := r.voices[r.defaultID]; !ok {
		return nil, &config.ConfigurationError{
			Field:   "tts.default_voice",
			Message: fmt.Sprintf("voice %s is not configured", r.defaultID),
		}
	}

	r.matcher = closestmatch.New(r.order, []int{2, 3})
	return r, nil
}

// Resolve returns the voice for an identifier. Unknown or empty ids
// fall back to the default voice; ok reports whether the id matched.
func (r *Registry) Resolve(id string) (Voice, bool) {
	if v, ok := r.voices[id]; ok {
		return v, true
	}
	for key, v := range r.voices {
		if strings.EqualFold(key, id) {
			return v, true
		}
	}
	return r.voices[r.defaultID], false
}

// Suggest names the closest known voice id for an unrecognized input,
// for the user-facing status message.
func (r *Registry) Suggest(id string) string {
	if id == "" {
		return ""
	}
	return r.matcher.Closest(strings.ToLower(id))
}

func (r *Registry) Default() Voice {
	return r.voices[r.defaultID]
}

func (r *Registry) List() []Voice {
	out := make([]Voice, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.voices[id])
	}
	return out
}

func voicesFromConfig(cfg *config.TtsConfig) []Voice {
	out := make([]Voice, 0, len(cfg.Voices))
	for _, vc := range cfg.Voices {
		out = append(out, Voice{
			ID:       vc.ID,
			Language: vc.Language,
			Model:    vc.Model,
			Sample:   vc.Sample,
		})
	}
	return out
}

// defaultVoices mirrors the language/accent table the app shipped with.
func defaultVoices() []Voice {
	return []Voice{
		{ID: "en-us-female", Language: "en-US", Model: "en-US-Standard-C"},
		{ID: "en-uk-female", Language: "en-GB", Model: "en-GB-Standard-A"},
		{ID: "en-us-male", Language: "en-US", Model: "en-US-Standard-D"},
		{ID: "french", Language: "fr-FR", Model: "fr-FR-Standard-A"},
		{ID: "german", Language: "de-DE", Model: "de-DE-Standard-A"},
		{ID: "spanish", Language: "es-ES", Model: "es-ES-Standard-A"},
		{ID: "italian", Language: "it-IT", Model: "it-IT-Standard-A"},
	}
}
