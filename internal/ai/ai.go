// Package ai answers questions and translates or summarises text through an
// OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/m3rciful/lecturebot/core/logger"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("ai: disabled")

const (
	DefaultModel     = openai.GPT3Dot5Turbo
	DefaultMaxTokens = 1000
)

// Config selects the model and endpoint.
type Config struct {
	APIKey    string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	BaseURL   string `yaml:"base_url" envconfig:"OPENAI_BASE_URL"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Normalize fills defaults.
func (c *Config) Normalize() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Completer turns a prompt into a single answer.
type Completer struct {
	cfg    Config
	client *openai.Client
}

// New builds a completer. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Completer {
	cfg.Normalize()
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	return &Completer{cfg: cfg, client: openai.NewClientWithConfig(oc)}
}

// Enabled reports whether an API key is configured.
func (c *Completer) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Complete sends prompt as a single user message.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: empty completion")
	}
	logger.Info(ctx, logger.CompAI, "ai.completion",
		slog.String("model", c.cfg.Model),
		slog.Int("tokens", resp.Usage.TotalTokens),
		slog.Duration("took", logger.Took(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// TranslatePrompt asks for an Arabic translation of text.
func TranslatePrompt(text string) string {
	return fmt.Sprintf(`ترجم النص التالي إلى العربية: "%s"`, text)
}

// SummarizePrompt asks for a short summary of text.
func SummarizePrompt(text string) string {
	return fmt.Sprintf(`لخص النص التالي باختصار: "%s"`, text)
}
