package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	VectorStoreQdrant   = "qdrant"
	VectorStorePostgres = "postgres"
	VectorStoreMemory   = "memory"

	TokenizerTiktoken = "tiktoken"
	TokenizerWords    = "words"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR" envDefault:":8000"`
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"120s"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Vector store configuration
	VectorStoreDriver string       `env:"VECTOR_STORE_DRIVER" envDefault:"qdrant"`
	QdrantCfg         QdrantConfig `envPrefix:"QDRANT_"`

	// Database configuration (postgres vector store)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBConnectAttempts   uint          `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	DBConnectDelay      time.Duration `env:"DB_CONNECT_DELAY" envDefault:"1s"`

	// Model provider configuration
	OpenAICfg         OpenAIConfig  `envPrefix:"OPENAI_"`
	EmbeddingCacheTTL time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"1h"`

	// Pipeline configuration
	ChunkerCfg   ChunkerConfig   `envPrefix:"CHUNK_"`
	IngestCfg    IngestConfig    `envPrefix:"INGEST_"`
	ExtractorCfg ExtractorConfig `envPrefix:"EXTRACTOR_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// DOCX library metered license (optional)
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Telegram bot configuration (only read by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// HTTPClientConfig holds outbound HTTP client settings
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
}

type QdrantConfig struct {
	HTTPClientConfig
	URL    string `env:"URL"`
	APIKey string `env:"API_KEY"`
}

type OpenAIConfig struct {
	HTTPClientConfig
	APIKey         string `env:"API_KEY"`
	BaseURL        string `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
}

type ChunkerConfig struct {
	MaxTokens        int    `env:"MAX_TOKENS" envDefault:"500"`
	Tokenizer        string `env:"TOKENIZER" envDefault:"tiktoken"`
	TiktokenEncoding string `env:"TIKTOKEN_ENCODING" envDefault:"cl100k_base"`
}

type IngestConfig struct {
	EmbedConcurrency int `env:"EMBED_CONCURRENCY" envDefault:"4"`
}

type ExtractorConfig struct {
	HTTPClientConfig
	MaxRemoteSize int64 `env:"MAX_REMOTE_SIZE" envDefault:"52428800"` // 50 MiB
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"26214400"`   // 25 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	NumResults         int    `env:"NUM_RESULTS" envDefault:"5"`

	// How long a chat stays bound to a project without activity
	BindingTTL time.Duration `env:"BINDING_TTL" envDefault:"24h"`
}

// ClientConfig holds the settings of a client talking to a running service
type ClientConfig struct {
	HTTPClientConfig
	URL      string `env:"URL"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads .env.<environment> (if present) and the process environment
func LoadConfig(environment string) (*Config, error) {
	loadEnvFile(environment)
	return Parse(environment)
}

// LoadClientConfig reads the MINDTRACE_* client settings. The server
// settings are not validated since nothing runs locally.
func LoadClientConfig(environment string) (*ClientConfig, error) {
	loadEnvFile(environment)

	cfg := &ClientConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MINDTRACE_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(environment string) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}
}

// Parse builds the configuration from the process environment only
func Parse(environment string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.VectorStoreDriver {
	case VectorStoreQdrant:
		if cfg.QdrantCfg.URL == "" && !cfg.EnableMocks {
			errors = append(errors, "QDRANT_URL is required for the qdrant vector store")
		}
	case VectorStorePostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for the postgres vector store")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	case VectorStoreMemory:
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_STORE_DRIVER must be one of qdrant, postgres, memory, got %q", cfg.VectorStoreDriver))
	}

	if cfg.OpenAICfg.APIKey == "" && !cfg.EnableMocks {
		errors = append(errors, "OPENAI_API_KEY is required unless ENABLE_MOCKS is set")
	}

	if cfg.ChunkerCfg.MaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_MAX_TOKENS must be positive, got %d", cfg.ChunkerCfg.MaxTokens))
	}

	switch cfg.ChunkerCfg.Tokenizer {
	case TokenizerTiktoken, TokenizerWords:
	default:
		errors = append(errors, fmt.Sprintf("CHUNK_TOKENIZER must be tiktoken or words, got %q", cfg.ChunkerCfg.Tokenizer))
	}

	if cfg.IngestCfg.EmbedConcurrency < 1 || cfg.IngestCfg.EmbedConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("INGEST_EMBED_CONCURRENCY must be between 1 and 64, got %d", cfg.IngestCfg.EmbedConcurrency))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidateTelegram checks the settings the bot binary needs
func (cfg *Config) ValidateTelegram() error {
	var errors []string

	if cfg.TelegramCfg.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.TelegramCfg.NumResults < 1 || cfg.TelegramCfg.NumResults > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_NUM_RESULTS must be between 1 and 20, got %d", cfg.TelegramCfg.NumResults))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
