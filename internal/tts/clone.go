package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// CloneClient talks to an XTTS-style voice-cloning server: it sends
// text plus a reference WAV sample and gets WAV audio back in the
// acoustic style of the sample. Builtin voices without a sample are
// rendered with the server's default speaker.
type CloneClient struct {
	baseURL    string
	logger     *logger.Log
	httpClient *http.Client
}

type cloneRequest struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	SpeakerWav string `json:"speaker_wav,omitempty"` // base64-encoded reference sample
}

type cloneError struct {
	Error string `json:"error"`
}

func NewCloneClient(cfg *config.TtsConfig) (*CloneClient, error) {
	if cfg.CloneURL == "" {
		return nil, &config.ConfigurationError{Field: "tts.clone_url", Message: "voice-clone server URL is required"}
	}

	return &CloneClient{
		baseURL: strings.TrimRight(cfg.CloneURL, "/"),
		logger:  logger.New(),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}, nil
}

func (c *CloneClient) Name() string {
	return "XTTS voice clone"
}

func (c *CloneClient) Synthesize(ctx context.Context, text string, voice Voice) (*AudioClip, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	req := cloneRequest{
		Text:     text,
		Language: shortLanguage(voice.Language),
	}

	if voice.IsClone() {
		sample, err := os.ReadFile(voice.Sample)
		if err != nil {
			return nil, fmt.Errorf("reading reference sample %s: %w", voice.Sample, err)
		}
		req.SpeakerWav = base64.StdEncoding.EncodeToString(sample)
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	c.logger.Debug(fmt.Sprintf("cloning voice %s for %d chars", voice.ID, len(text)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("clone request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr cloneError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("clone server error: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("clone server error: status %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty audio content received")
	}

	return &AudioClip{Audio: body, Format: "wav", Voice: voice.ID}, nil
}

// shortLanguage maps "en-US" to the two-letter code XTTS expects.
func shortLanguage(language string) string {
	if language == "" {
		return "en"
	}
	if idx := strings.IndexByte(language, '-'); idx > 0 {
		return strings.ToLower(language[:idx])
	}
	return strings.ToLower(language)
}
