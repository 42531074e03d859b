// ABOUTME: Centralized configuration for the deal recap pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the deal recap services
type Config struct {
	// Session store settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey     string
	OpenAIBaseURL string
	ChatModel     string
	SpeechModel   string
	WhisperModel  string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration

	// HTTP server settings
	HTTPAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		CharmHost:     getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:   getEnv("CHARM_DB", "dealrecap"),
		AutoSync:      getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ChatModel:     getEnv("RECAP_OPENAI_MODEL", "gpt-4o-mini"),
		SpeechModel:   getEnv("RECAP_SPEECH_MODEL", "tts-1"),
		WhisperModel:  getEnv("RECAP_WHISPER_MODEL", "whisper-1"),
		Timeout:       getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		MaxRetries:    getEnvInt("OPENAI_MAX_RETRIES", 2),
		RetryDelay:    getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		HTTPAddr:      getEnv("RECAP_HTTP_ADDR", ":8080"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %v", c.Timeout)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
