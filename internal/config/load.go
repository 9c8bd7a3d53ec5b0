package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "NEWSLENS"

// ErrInvalidConfig is wrapped by every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultRubrics are the TASS feed sections sampled when none are configured.
var DefaultRubrics = []string{
	"/socialnaya-zaschita",
	"/zdorove",
	"/demografiya",
	"/nacionalnye-proekty",
	"/ekonomika",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.timeout", 5*time.Minute)
	v.SetDefault("task.item_concurrency", 4)

	v.SetDefault("classifier.provider", ClassifierNLI)
	v.SetDefault("classifier.cache.enabled", false)
	v.SetDefault("classifier.cache.backend", CacheMemory)
	v.SetDefault("classifier.cache.redis_addr", "")
	v.SetDefault("classifier.cache.ttl", 24*time.Hour)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("nli.base_url", "http://localhost:8000")
	v.SetDefault("nli.timeout", 30*time.Second)
	v.SetDefault("nli.target_label", "entailment")

	v.SetDefault("source.provider", SourceTASS)
	v.SetDefault("source.static_items", []string{})

	v.SetDefault("tass.base_url", "https://tass.ru/tbp/api/v1/content")
	v.SetDefault("tass.pages", 10)
	v.SetDefault("tass.page_size", 20)
	v.SetDefault("tass.lang", "ru")
	v.SetDefault("tass.rubrics", DefaultRubrics)
	v.SetDefault("tass.max_retries", 3)
	v.SetDefault("tass.timeout", 15*time.Second)
}

// Load configuration from defaults, an optional config file and environment
// variables. Environment variables take precedence over values from config
// files. An empty configPath looks for config.yaml in the working directory
// and tolerates its absence; an explicit path must exist.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules for the selected
// providers.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var problems []string
	switch c.Classifier.Provider {
	case ClassifierGemini:
		if c.LLM.GeminiAPIKey == "" {
			problems = append(problems, "llm.gemini_api_key is required when classifier.provider is gemini")
		}
		if c.LLM.ModelName == "" {
			problems = append(problems, "llm.model_name is required when classifier.provider is gemini")
		}
	case ClassifierNLI:
		if c.NLI.BaseURL == "" {
			problems = append(problems, "nli.base_url is required when classifier.provider is nli")
		}
		if c.NLI.TargetLabel == "" {
			problems = append(problems, "nli.target_label is required when classifier.provider is nli")
		}
	}

	if c.Classifier.Cache.Enabled && c.Classifier.Cache.Backend == CacheRedis && c.Classifier.Cache.RedisAddr == "" {
		problems = append(problems, "classifier.cache.redis_addr is required when the redis cache is enabled")
	}

	switch c.Source.Provider {
	case SourceTASS:
		if c.TASS.BaseURL == "" {
			problems = append(problems, "tass.base_url is required when source.provider is tass")
		}
	case SourceStatic:
		if len(c.Source.StaticItems) == 0 {
			problems = append(problems, "source.static_items must not be empty when source.provider is static")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
