package config

import (
	"fmt"
	"os"
	"time"
)

// Config carries the gateway's environment-derived settings.
type Config struct {
	Port        string
	Development bool

	MongoURI      string
	MongoDatabase string

	JWTSecret string

	GeminiAPIKey     string
	OpenAIAPIKey     string
	ElevenLabsAPIKey string

	DefaultSttProvider string
	DefaultAiProvider  string
	DefaultTtsProvider string

	ProviderCallTimeout time.Duration
}

// Load reads configuration from environment variables. Provider API keys
// are optional; roles without a usable real provider fall back to mocks in
// development mode and fail startup otherwise.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Development: os.Getenv("VOXGATE_ENV") != "production",

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "voxgate"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),

		DefaultSttProvider: os.Getenv("DEFAULT_STT_PROVIDER"),
		DefaultAiProvider:  os.Getenv("DEFAULT_AI_PROVIDER"),
		DefaultTtsProvider: os.Getenv("DEFAULT_TTS_PROVIDER"),

		ProviderCallTimeout: 30 * time.Second,
	}

	if raw := os.Getenv("PROVIDER_CALL_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_CALL_TIMEOUT: %w", err)
		}
		cfg.ProviderCallTimeout = timeout
	}

	if cfg.JWTSecret == "" {
		if !cfg.Development {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "voxgate-dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
