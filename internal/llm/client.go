// Package llm talks to an OpenAI-compatible chat-completions endpoint such as
// OpenRouter. The health harness uses it to check the agent's model backend
// directly, outside the skill-process path.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config describes the endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a thin chat-completions client.
type Client struct {
	client openai.Client
	model  string
}

// Completion is the first choice of a chat completion.
type Completion struct {
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage reports token counts.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// ErrNoChoices is returned when the endpoint answers without any choice.
var ErrNoChoices = errors.New("completion returned no choices")

// New creates a Client. Retries are disabled so a probe reports the first
// failure it sees.
func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{client: openai.NewClient(opts...), model: cfg.Model}
}

// Complete sends a single user prompt and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return nil, describe(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	return &Completion{
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// describe shortens API errors to their status line.
func describe(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("endpoint returned HTTP %d: %w", apiErr.StatusCode, err)
	}
	return err
}

// StatusCode extracts the HTTP status from an error returned by Complete,
// or 0 when the failure happened before a response arrived.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
