// Package config loads menuquiz settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/quizgen"
	"github.com/abhisek/menuquiz/internal/textcache"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// MinUploadBytes is the smallest accepted upload limit.
	MinUploadBytes = 1024
)

// Config is the complete application configuration.
type Config struct {
	Env        string
	Log        logger.Config
	LLM        llm.Config
	Server     ServerConfig
	Redis      textcache.RedisConfig
	CacheTTL   time.Duration
	Generation quizgen.Config

	// DBPath overrides the default event store location when set.
	DBPath string

	// File is the config file that was read, if any.
	File string
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int

	// MaxUploadBytes caps PDF uploads.
	MaxUploadBytes int64

	// UploadConcurrency bounds how many PDFs are parsed at once.
	UploadConcurrency int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log.level", "info")

	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)
	v.SetDefault("llm.ollama.server_url", llmDefaults.Ollama.ServerURL)
	v.SetDefault("llm.ollama.model", llmDefaults.Ollama.Model)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.upload_concurrency", 4)

	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", textcache.DefaultTTL)

	gen := quizgen.DefaultConfig()
	v.SetDefault("generation.batch_threshold", gen.BatchThreshold)
	v.SetDefault("generation.batch_size", gen.BatchSize)
	v.SetDefault("generation.extra_attempts", gen.ExtraAttempts)
	v.SetDefault("generation.batch_delay", gen.BatchDelay)
	v.SetDefault("generation.temperature", gen.Temperature)
	v.SetDefault("generation.temperature_jitter", gen.TemperatureJitter)
	v.SetDefault("generation.min_count", gen.MinCount)
	v.SetDefault("generation.max_count", gen.MaxCount)
	v.SetDefault("generation.default_count", gen.DefaultCount)
}

// conventional names honoured next to the MENUQUIZ_ ones.
var envAliases = map[string][]string{
	"llm.openai.api_key":      {"OPENAI_API_KEY"},
	"llm.anthropic.api_key":   {"ANTHROPIC_API_KEY"},
	"llm.gemini.api_key":      {"GEMINI_API_KEY"},
	"llm.openrouter.api_key":  {"OPENROUTER_API_KEY"},
	"llm.ollama.server_url":   {"OLLAMA_HOST"},
	"server.port":             {"PORT"},
	"server.max_upload_bytes": {"MAX_FILE_SIZE"},
	"redis.addr":              {"REDIS_ADDRESS"},
	"redis.password":          {"REDIS_PASSWORD"},
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("MENUQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{key, "MENUQUIZ_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration. When file is empty, menuquiz.yaml is
// looked up in the working directory and $XDG_CONFIG_HOME/menuquiz, and
// a missing file is not an error. Environment variables override the file.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("menuquiz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "menuquiz"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Env:  v.GetString("env"),
		File: v.ConfigFileUsed(),
		Log: logger.Config{
			Level: v.GetString("log.level"),
			Env:   v.GetString("env"),
		},
		LLM: llm.Config{
			Provider: v.GetString("llm.provider"),
			Timeout:  v.GetDuration("llm.timeout"),
			OpenAI: llm.OpenAIConfig{
				APIKey:  v.GetString("llm.openai.api_key"),
				Model:   v.GetString("llm.openai.model"),
				BaseURL: v.GetString("llm.openai.base_url"),
			},
			Anthropic: llm.AnthropicConfig{
				APIKey: v.GetString("llm.anthropic.api_key"),
				Model:  v.GetString("llm.anthropic.model"),
			},
			Gemini: llm.GeminiConfig{
				APIKey: v.GetString("llm.gemini.api_key"),
				Model:  v.GetString("llm.gemini.model"),
			},
			OpenRouter: llm.OpenRouterConfig{
				APIKey:  v.GetString("llm.openrouter.api_key"),
				Model:   v.GetString("llm.openrouter.model"),
				BaseURL: v.GetString("llm.openrouter.base_url"),
			},
			Ollama: llm.OllamaConfig{
				ServerURL: v.GetString("llm.ollama.server_url"),
				Model:     v.GetString("llm.ollama.model"),
			},
		},
		Server: ServerConfig{
			Port:              v.GetInt("server.port"),
			MaxUploadBytes:    v.GetInt64("server.max_upload_bytes"),
			UploadConcurrency: v.GetInt64("server.upload_concurrency"),
		},
		Redis: textcache.RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		CacheTTL: v.GetDuration("cache.ttl"),
		DBPath:   v.GetString("db"),
	}

	gen := quizgen.DefaultConfig()
	gen.BatchThreshold = v.GetInt("generation.batch_threshold")
	gen.BatchSize = v.GetInt("generation.batch_size")
	gen.ExtraAttempts = v.GetInt("generation.extra_attempts")
	gen.BatchDelay = v.GetDuration("generation.batch_delay")
	gen.Temperature = v.GetFloat64("generation.temperature")
	gen.TemperatureJitter = v.GetFloat64("generation.temperature_jitter")
	gen.MinCount = v.GetInt("generation.min_count")
	gen.MaxCount = v.GetInt("generation.max_count")
	gen.DefaultCount = v.GetInt("generation.default_count")
	cfg.Generation = gen

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = discoverProvider(cfg.LLM)
	}
	return cfg
}

// discoverProvider picks the first provider with an API key, preferring
// OpenAI.
func discoverProvider(c llm.Config) string {
	switch {
	case c.OpenAI.APIKey != "":
		return llm.ProviderOpenAI
	case c.Anthropic.APIKey != "":
		return llm.ProviderAnthropic
	case c.Gemini.APIKey != "":
		return llm.ProviderGemini
	case c.OpenRouter.APIKey != "":
		return llm.ProviderOpenRouter
	}
	return llm.ProviderOpenAI
}

// Validate checks everything except provider credentials, which are only
// needed by commands that call a model (see llm.Config.Validate).
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("env must be one of development, production, test; got %q", c.Env)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes < MinUploadBytes {
		return fmt.Errorf("max upload size must be at least %d bytes", MinUploadBytes)
	}
	if c.Server.UploadConcurrency < 1 {
		return fmt.Errorf("upload concurrency must be positive")
	}

	g := c.Generation
	if g.BatchSize < 1 || g.BatchThreshold < 1 {
		return fmt.Errorf("batch size and threshold must be positive")
	}
	if g.MinCount < 1 || g.MinCount > g.MaxCount {
		return fmt.Errorf("invalid question count bounds %d..%d", g.MinCount, g.MaxCount)
	}
	if g.DefaultCount < g.MinCount || g.DefaultCount > g.MaxCount {
		return fmt.Errorf("default question count %d outside %d..%d", g.DefaultCount, g.MinCount, g.MaxCount)
	}
	return nil
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
