package summarizer

import (
	"fmt"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/summarizer/huggingface"
	"github.com/tahcohcat/newsbreeze/internal/summarizer/ollama"
)

type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOllama      Provider = "ollama"
)

// NewBackend creates a summarization backend based on the configuration.
func NewBackend(cfg *config.Config) (Summarizer, error) {
	switch Provider(cfg.Summarizer.Provider) {
	case ProviderHuggingFace:
		return huggingface.NewClient(&cfg.HuggingFace, cfg.Summarizer.MaxLength)
	case ProviderOllama:
		return ollama.NewClient(&cfg.Ollama, cfg.Summarizer.MaxLength)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", cfg.Summarizer.Provider)
	}
}
