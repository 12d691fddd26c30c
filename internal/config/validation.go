package config

import "fmt"

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	// 0. Check for nil config (defensive programming)
	if c == nil {
		return ErrConfigNil
	}

	// 1. API Key validation (required for all generation operations)
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	// 2. Model configuration validation
	if c.TextModel == "" {
		return fmt.Errorf("%w: text_model cannot be empty", ErrInvalidModelName)
	}
	if c.VisionModel == "" {
		return fmt.Errorf("%w: vision_model cannot be empty", ErrInvalidModelName)
	}
	if c.ImageModel == "" {
		return fmt.Errorf("%w: image_model cannot be empty", ErrInvalidModelName)
	}

	// 3. Language validation
	if c.Language == "" {
		return fmt.Errorf("%w: language cannot be empty", ErrInvalidLanguage)
	}

	// 4. Timeout range: 1 second to 1 hour
	if c.GenerationTimeoutSec < 1 || c.GenerationTimeoutSec > 3600 {
		return fmt.Errorf("%w: must be between 1 and 3600 seconds, got %d",
			ErrInvalidTimeout, c.GenerationTimeoutSec)
	}

	// 5. Diagram fan-out bound: at least 1, capped to keep the Imagen quota sane
	if c.DiagramConcurrency < 1 || c.DiagramConcurrency > 16 {
		return fmt.Errorf("%w: must be between 1 and 16, got %d",
			ErrInvalidConcurrency, c.DiagramConcurrency)
	}

	// 6. Rate limit validation
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests_per_second must be positive, got %.2f",
			ErrInvalidRateLimit, c.RequestsPerSecond)
	}
	if c.RequestBurst < 1 {
		return fmt.Errorf("%w: request_burst must be at least 1, got %d",
			ErrInvalidRateLimit, c.RequestBurst)
	}

	// 7. Cache TTL: 0 = keep forever (base behavior), otherwise positive
	if c.CacheTTLSec < 0 {
		return fmt.Errorf("%w: cache_ttl_sec cannot be negative, got %d",
			ErrInvalidCacheTTL, c.CacheTTLSec)
	}

	return nil
}
