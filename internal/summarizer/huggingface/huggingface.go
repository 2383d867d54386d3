package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// Client calls the Hugging Face Inference API for a pretrained
// summarization model (Falconsai/text_summarization by default).
type Client struct {
	apiToken   string
	baseURL    string
	model      string
	maxLength  int
	minLength  int
	logger     *logger.Log
	httpClient *http.Client
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

func NewClient(cfg *config.HuggingFaceConfig, maxLength int) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("hugging face API token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	model := cfg.Model
	if model == "" {
		model = "Falconsai/text_summarization"
	}

	return &Client{
		apiToken:  cfg.APIToken,
		baseURL:   baseURL,
		model:     model,
		maxLength: maxLength,
		minLength: 30,
		logger:    logger.New(),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}, nil
}

func (c *Client) Name() string {
	return "huggingface"
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	req := inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			MaxLength: c.maxLength,
			MinLength: c.minLength,
			DoSample:  false,
		},
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	c.logger.Debug(fmt.Sprintf("summarizing %d chars with %s", len(text), c.model))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).Error("hugging face request failed")
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr inferenceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("inference API error: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return "", fmt.Errorf("inference API error: status %d", resp.StatusCode)
	}

	var results []inferenceResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", fmt.Errorf("no summary in inference response")
	}

	return results[0].SummaryText, nil
}
