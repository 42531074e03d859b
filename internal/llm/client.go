// ABOUTME: OpenAI client wrapper for extraction, formatting, and audio calls
// ABOUTME: Holds model names and timeouts; request logic lives per operation
package llm

import (
	"time"

	"github.com/atstrading/dealrecap/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI API client for the deal recap pipeline.
type Client struct {
	api          *openai.Client
	chatModel    string
	speechModel  string
	whisperModel string
	timeout      time.Duration
	maxRetries   int
	retryDelay   time.Duration
}

// New creates a client from configuration. A missing API key fails fast so
// callers can surface extraction features as unavailable instead of crashing
// later mid-request.
func New(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, ErrMissingAPIKey
	}

	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}

	return &Client{
		api:          openai.NewClientWithConfig(oc),
		chatModel:    cfg.ChatModel,
		speechModel:  cfg.SpeechModel,
		whisperModel: cfg.WhisperModel,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}, nil
}
