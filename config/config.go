package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Feeds       FeedsConfig       `mapstructure:"feeds"`
	Summarizer  SummarizerConfig  `mapstructure:"summarizer"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Ollama      OllamaConfig      `mapstructure:"ollama"`
	Tts         TtsConfig         `mapstructure:"tts"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Session     SessionConfig     `mapstructure:"session"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// A single RSS/Atom source, addressed by name from the UI.
type FeedSource struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type FeedsConfig struct {
	Sources    []FeedSource `mapstructure:"sources"`
	MaxPerFeed int          `mapstructure:"max_per_feed"`
	Timeout    int          `mapstructure:"timeout"` // seconds
	UserAgent  string       `mapstructure:"user_agent"`
}

// Summarization provider selection
type SummarizerConfig struct {
	Provider  string `mapstructure:"provider"`   // "huggingface" or "ollama"
	MaxLength int    `mapstructure:"max_length"` // characters
	MinInput  int    `mapstructure:"min_input"`  // below this the text is returned as-is
}

type HuggingFaceConfig struct {
	APIToken string `mapstructure:"api_token"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"` // Optional, defaults to the hosted inference API
	Timeout  int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// A voice the user can pick. Builtin voices name a backend model;
// clone voices name a reference WAV sample instead.
type VoiceConfig struct {
	ID       string `mapstructure:"id"`
	Language string `mapstructure:"language"` // e.g. "en-US"
	Model    string `mapstructure:"model"`    // backend voice name, e.g. "en-GB-Standard-A"
	Sample   string `mapstructure:"sample"`   // path to a reference WAV for cloning
}

type TtsConfig struct {
	Provider        string        `mapstructure:"provider"` // "google", "clone" or "dummy"
	Enabled         bool          `mapstructure:"enabled"`
	DefaultVoice    string        `mapstructure:"default_voice"`
	Voices          []VoiceConfig `mapstructure:"voices"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	CloneURL        string        `mapstructure:"clone_url"` // XTTS-style server for voice cloning
	Timeout         int           `mapstructure:"timeout"`
	MaxChars        int           `mapstructure:"max_chars"` // longer texts are cut before synthesis
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	TTLMin  int    `mapstructure:"ttl_minutes"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.BindEnv("huggingface.api_token", "HUGGINGFACE_API_TOKEN")
	viper.BindEnv("tts.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("summarizer.provider", "SUMMARIZER_PROVIDER")

	viper.SetDefault("server.port", "8080")

	viper.SetDefault("feeds.max_per_feed", 5)
	viper.SetDefault("feeds.timeout", 15)
	viper.SetDefault("feeds.user_agent", "NewsBreeze/1.0 (RSS reader)")

	viper.SetDefault("summarizer.provider", "huggingface")
	viper.SetDefault("summarizer.max_length", 150)
	viper.SetDefault("summarizer.min_input", 50)

	viper.SetDefault("huggingface.model", "Falconsai/text_summarization")
	viper.SetDefault("huggingface.base_url", "https://api-inference.huggingface.co")
	viper.SetDefault("huggingface.timeout", 30)

	viper.SetDefault("ollama.host", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3.2")
	viper.SetDefault("ollama.timeout", 50)

	viper.SetDefault("tts.enabled", true)
	viper.SetDefault("tts.provider", "google")
	viper.SetDefault("tts.timeout", 30)
	viper.SetDefault("tts.max_chars", 3000)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.path", "./newsbreeze.db")
	viper.SetDefault("cache.ttl_minutes", 60)

	viper.SetDefault("session.secret", "change-this-in-production")

	// Allow environment variables
	viper.SetEnvPrefix("NEWSBREEZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	// An optional config.local.yaml overrides the checked-in config.
	viper.SetConfigName("config.local")
	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, config.validate()
}

func (c *Config) validate() error {
	if len(c.Feeds.Sources) == 0 {
		// No configured sources means the UI has nothing to refresh,
		// but the server can still start. Fall back to a small default set.
		c.Feeds.Sources = DefaultSources()
	}
	for _, s := range c.Feeds.Sources {
		if s.Name == "" || s.URL == "" {
			return &ConfigurationError{Field: "feeds.sources", Message: "every source needs a name and a url"}
		}
	}
	switch c.Summarizer.Provider {
	case "huggingface", "ollama":
	default:
		return &ConfigurationError{Field: "summarizer.provider", Message: "must be huggingface or ollama"}
	}
	if c.Summarizer.MaxLength <= 0 {
		return &ConfigurationError{Field: "summarizer.max_length", Message: "must be positive"}
	}
	return nil
}

// DefaultSources mirrors the feed list the app shipped with.
func DefaultSources() []FeedSource {
	return []FeedSource{
		{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
		{Name: "ABC News", URL: "https://abcnews.go.com/abcnews/topstories"},
		{Name: "Yahoo News", URL: "https://news.yahoo.com/rss"},
	}
}

// ConfigurationError reports a missing or invalid configuration value.
// It blocks only the feature that depends on the value.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Field + ": " + e.Message
}
