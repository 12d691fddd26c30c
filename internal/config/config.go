// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.infinitewiki/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Generation: model selection for text, vision and diagram images,
//     output language, per-request timeout
//   - Orchestration: request rate limit, diagram fan-out bound
//   - Cache: optional TTL bound for finalized generations
//
// Security: the Gemini API key is read from the environment only and is
// masked in MarshalJSON().
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the Gemini API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidLanguage indicates the output language is empty.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidTimeout indicates the generation timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid generation timeout")

	// ErrInvalidConcurrency indicates the diagram concurrency bound is out of range.
	ErrInvalidConcurrency = errors.New("invalid diagram concurrency")

	// ErrInvalidRateLimit indicates the request rate limit is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidCacheTTL indicates the result cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL")
)

// Default model identifiers.
const (
	// DefaultTextModel handles definitions, search answers, video summaries,
	// web resources, document questions and translations.
	DefaultTextModel = "gemini-2.5-flash"

	// DefaultVisionModel handles image analysis of binary attachments.
	DefaultVisionModel = "gemini-2.5-flash"

	// DefaultImageModel generates inline diagram images.
	DefaultImageModel = "imagen-3.0-generate-002"

	// DefaultLanguage is the base output language. Content generated in the
	// base language is displayed as-is; any other session language routes
	// locally paginated pages through the translation strategy.
	DefaultLanguage = "English"
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Generation model configuration
	TextModel   string `mapstructure:"text_model" json:"text_model"`
	VisionModel string `mapstructure:"vision_model" json:"vision_model"`
	ImageModel  string `mapstructure:"image_model" json:"image_model"`

	// Language is the default output language for new sessions.
	Language string `mapstructure:"language" json:"language"`

	// GenerationTimeoutSec bounds any single generation or translation call.
	GenerationTimeoutSec int `mapstructure:"generation_timeout_sec" json:"generation_timeout_sec"`

	// DiagramConcurrency bounds simultaneous outstanding diagram image
	// requests across all sessions.
	DiagramConcurrency int `mapstructure:"diagram_concurrency" json:"diagram_concurrency"`

	// RequestsPerSecond is the proactive rate limit for generation calls.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"`
	RequestBurst      int     `mapstructure:"request_burst" json:"request_burst"`

	// CacheTTLSec bounds result-cache entries. 0 (default) keeps entries
	// forever, matching the base no-eviction behavior.
	CacheTTLSec int `mapstructure:"cache_ttl_sec" json:"cache_ttl_sec"`

	// GeminiAPIKey is read from the GEMINI_API_KEY environment variable.
	// SENSITIVE: masked in MarshalJSON.
	GeminiAPIKey string `mapstructure:"-" json:"gemini_api_key"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.infinitewiki/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".infinitewiki")

	// Ensure directory exists (use 0750 permission for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	// Configure Viper
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	// Use Unmarshal to automatically map to struct (type-safe)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// API key comes from the environment only, never from the config file.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("text_model", DefaultTextModel)
	v.SetDefault("vision_model", DefaultVisionModel)
	v.SetDefault("image_model", DefaultImageModel)
	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("generation_timeout_sec", 300)
	v.SetDefault("diagram_concurrency", 3)
	v.SetDefault("requests_per_second", 10)
	v.SetDefault("request_burst", 30)
	v.SetDefault("cache_ttl_sec", 0)
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("text_model", "INFINITEWIKI_TEXT_MODEL")
	mustBind("vision_model", "INFINITEWIKI_VISION_MODEL")
	mustBind("image_model", "INFINITEWIKI_IMAGE_MODEL")
	mustBind("language", "INFINITEWIKI_LANGUAGE")

	// NOTE: GEMINI_API_KEY is read directly in Load(), not via Viper.
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid substring matching against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Shows first 2 and last 2 characters, masks the rest.
// SECURITY: For secrets <=8 chars, fully masks to prevent substring attacks.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - GeminiAPIKey
//
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
