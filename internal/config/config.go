package config

import "time"

// Provider names accepted by the classifier and source settings.
const (
	ClassifierGemini = "gemini"
	ClassifierNLI    = "nli"

	SourceTASS   = "tass"
	SourceStatic = "static"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"`
	NLI        NLIConfig        `mapstructure:"nli"`
	Source     SourceConfig     `mapstructure:"source" validate:"required"`
	TASS       TASSConfig       `mapstructure:"tass"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP server and workers
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// TaskConfig controls background task execution.
type TaskConfig struct {
	WorkerCount     int           `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize       int           `mapstructure:"queue_size" validate:"gte=1"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gte=0"`
	ItemConcurrency int           `mapstructure:"item_concurrency" validate:"gte=1"`
}

// ClassifierConfig selects the zero-shot classifier and its cache.
type ClassifierConfig struct {
	Provider string      `mapstructure:"provider" validate:"required,oneof=gemini nli"`
	Cache    CacheConfig `mapstructure:"cache"`
}

// CacheConfig controls prediction caching.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Backend   string        `mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"`
	ModelName         string  `mapstructure:"model_name"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	Temperature       float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// NLIConfig configures the HTTP inference server classifier.
type NLIConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	TargetLabel string        `mapstructure:"target_label"`
}

// SourceConfig selects the text source.
type SourceConfig struct {
	Provider    string   `mapstructure:"provider" validate:"required,oneof=tass static"`
	StaticItems []string `mapstructure:"static_items"`
}

// TASSConfig configures the TASS news feed source.
type TASSConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	Pages      int           `mapstructure:"pages" validate:"gte=1"`
	PageSize   int           `mapstructure:"page_size" validate:"gte=1"`
	Lang       string        `mapstructure:"lang"`
	Rubrics    []string      `mapstructure:"rubrics"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
}
