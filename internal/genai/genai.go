// Package genai provides the completion-backend client used when the
// scripted engine has no reply for an utterance.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the completion model used unless overridden.
var DefaultModel = openai.ChatModelGPT4oMini

// ClientInterface defines the minimal completion surface the dialogue
// fallback path depends on. Implemented by Client and by test mocks.
type ClientInterface interface {
	GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Opts holds configuration options for the completion client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the completion client.
type Option func(*Opts)

// WithAPIKey sets the API key, overriding the OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// NewClient initializes a completion client, falling back to the
// OPENAI_API_KEY environment variable when no key option is given.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = openai.ChatModel(cfg.Model)
	}

	slog.Debug("genai.NewClient: completion client created", "model", model)
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// GenerateReply produces a free-text reply for the given prompts.
func (c *Client) GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		slog.Error("Client.GenerateReply: completion request failed", "error", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// SalesSystemPrompt frames the completion backend with the session's sales
// persona and script context so fallback replies stay on message.
func SalesSystemPrompt(agentName, industry, painPoint string, services []string) string {
	var b strings.Builder
	b.WriteString("You are " + agentName + ", a friendly AI sales assistant for CloseLoop AI. ")
	b.WriteString("You are mid-conversation with a prospect in the " + industry + " industry ")
	b.WriteString("whose main problem is: " + painPoint + ". ")
	if len(services) > 0 {
		b.WriteString("The services you recommend are: " + strings.Join(services, ", ") + ". ")
	}
	b.WriteString("Answer the prospect's last message briefly and naturally, then steer back toward booking a 15-minute demo. Never invent pricing or guarantees.")
	return b.String()
}
