package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/newsbreeze/config"
	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// Client summarizes through a locally running ollama instance, for
// setups without a hosted inference token.
type Client struct {
	client    *api.Client
	config    *config.OllamaConfig
	maxLength int
	logger    *logger.Log
}

func NewClient(cfg *config.OllamaConfig, maxLength int) (*Client, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &Client{
		client:    client,
		config:    cfg,
		maxLength: maxLength,
		logger:    logger.New(),
	}, nil
}

func (c *Client) Name() string {
	return "ollama"
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	shouldStream := false

	prompt := fmt.Sprintf(
		"Summarize the following news article in at most %d characters. Reply with the summary only, no preamble.\n\n%s",
		c.maxLength, text)

	req := &api.GenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: &shouldStream,
		Options: map[string]interface{}{
			"temperature": 0.3,
			"top_p":       0.9,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Second)
	defer cancel()

	c.logger.Debug(fmt.Sprintf("summarizing %d chars with model %s", len(text), c.config.Model))

	var response string
	err := c.client.Generate(timeoutCtx, req, func(g api.GenerateResponse) error {
		response = g.Response
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Error("failed to generate summary")
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return response, nil
}

// IsModelAvailable checks whether the configured model is pulled.
func (c *Client) IsModelAvailable(ctx context.Context) error {
	models, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range models.Models {
		if model.Name == c.config.Model {
			return nil
		}
	}

	return fmt.Errorf("model %s not found", c.config.Model)
}
