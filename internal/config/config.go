package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Supabase Postgres connection string.
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Embedding / transcription providers
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	WhisperModel      string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`

	// Chatbot destination
	DefaultChatbotID string `envconfig:"DEFAULT_CHATBOT_ID"`

	// Request settings for the scrapers
	UserAgent       string  `envconfig:"SCRAPER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	RequestDelay    float64 `envconfig:"REQUEST_DELAY" default:"1.0"`
	RequestTimeout  int     `envconfig:"REQUEST_TIMEOUT" default:"30"`
	RequestRetries  int     `envconfig:"REQUEST_RETRIES" default:"3"`
	RetryDelaySecs  int     `envconfig:"REQUEST_RETRY_DELAY_SECONDS" default:"5"`
	PodcastMaxPages int     `envconfig:"PODCAST_MAX_PAGES" default:"100"`

	// Processing settings
	MaxChunkSize int    `envconfig:"MAX_CONTENT_CHUNK_SIZE" default:"4000"`
	ChunkOverlap int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	TempDir      string `envconfig:"SCRAPER_TEMP_DIR" default:"temp"`

	// Batch run log file (in addition to stdout). Empty disables the file sink.
	LogDir string `envconfig:"SCRAPER_LOG_DIR" default:"data/logs"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell or a CI secret store, so a missing
	// .env file is not an error.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingRequired)
	}
	if c.DefaultChatbotID == "" {
		return fmt.Errorf("%w: DEFAULT_CHATBOT_ID", ErrMissingRequired)
	}
	if c.EmbeddingProvider != "openai" && c.EmbeddingProvider != "gemini" {
		return fmt.Errorf("unsupported EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	return nil
}
