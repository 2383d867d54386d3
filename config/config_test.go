package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load reads the process-wide viper instance, so every test starts in
// an empty temp directory with a reset state.
func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setup(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Feeds.MaxPerFeed)
	assert.Equal(t, "huggingface", cfg.Summarizer.Provider)
	assert.Equal(t, "Falconsai/text_summarization", cfg.HuggingFace.Model)
	assert.Equal(t, 3000, cfg.Tts.MaxChars)
	assert.True(t, cfg.Cache.Enabled)

	// No sources configured falls back to the shipped feed list.
	assert.NotEmpty(t, cfg.Feeds.Sources)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := setup(t)

	yaml := `
server:
  port: "9000"
summarizer:
  provider: ollama
  max_length: 80
feeds:
  sources:
    - name: Example
      url: http://example.com/rss
tts:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.Summarizer.Provider)
	assert.Equal(t, 80, cfg.Summarizer.MaxLength)
	assert.False(t, cfg.Tts.Enabled)
	require.Len(t, cfg.Feeds.Sources, 1)
	assert.Equal(t, "Example", cfg.Feeds.Sources[0].Name)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setup(t)
	t.Setenv("SUMMARIZER_PROVIDER", "chatgpt")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "summarizer.provider", cfgErr.Field)
}

func TestLoadRejectsSourceWithoutURL(t *testing.T) {
	dir := setup(t)

	yaml := `
feeds:
  sources:
    - name: Broken
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "feeds.sources", cfgErr.Field)
}

func TestEnvOverrides(t *testing.T) {
	setup(t)
	t.Setenv("HUGGINGFACE_API_TOKEN", "hf_test_token")
	t.Setenv("NEWSBREEZE_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hf_test_token", cfg.HuggingFace.APIToken)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "tts.clone_url", Message: "required for clone voices"}
	assert.Equal(t, "tts.clone_url: required for clone voices", err.Error())
}
