package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/newsbreeze/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.HuggingFaceConfig{
		APIToken: "hf_test_token",
		BaseURL:  srv.URL,
		Timeout:  5,
	}, 150)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(&config.HuggingFaceConfig{}, 150)
	require.Error(t, err)
}

func TestSummarizeSendsInferenceRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/Falconsai/text_summarization", r.URL.Path)
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))

		var req struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				MaxLength int  `json:"max_length"`
				MinLength int  `json:"min_length"`
				DoSample  bool `json:"do_sample"`
			} `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "long article text", req.Inputs)
		assert.Equal(t, 150, req.Parameters.MaxLength)
		assert.False(t, req.Parameters.DoSample)

		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "short version"}})
	})

	out, err := client.Summarize(context.Background(), "long article text")
	require.NoError(t, err)
	assert.Equal(t, "short version", out)
}

func TestSummarizeSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "model is loading"})
	})

	_, err := client.Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is loading")
}

func TestSummarizeRejectsEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{})
	})

	_, err := client.Summarize(context.Background(), "text")
	require.Error(t, err)
}
