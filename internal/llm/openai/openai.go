// Package openai provides a text-completion model backed by the OpenAI Chat
// Completions API. Any OpenAI-compatible server (Ollama, vLLM, LM Studio)
// works by pointing BaseURL at it.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/elsayed85/quick-rag/internal/domain"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Model wraps the Chat Completions API behind domain.LanguageModel.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4o,
		Temperature:         0,
		MaxCompletionTokens: 1024,
	}
}

// Complete sends prompt as a single user message and returns the reply text.
func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai api error: %v", domain.ErrModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrModelRefused)
	}
	ch0 := resp.Choices[0]
	if ch0.Message.Refusal != "" || ch0.FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: %s", domain.ErrModelRefused, ch0.Message.Refusal)
	}
	text := strings.TrimSpace(ch0.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrModelRefused)
	}
	return text, nil
}

// Name returns the configured model identifier.
func (m *Model) Name() string { return m.opts.Model }
