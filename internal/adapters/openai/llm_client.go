package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/chainblog/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Options configures the OpenAI client
type Options struct {
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIClient is an implementation of the LLMClient interface using OpenAI chat completions
type OpenAIClient struct {
	apiKey func() string
	opts   Options
	logger *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client; the key is read on every call
func NewOpenAIClient(apiKey func() string, opts Options, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		opts:   opts,
		logger: logger,
	}
}

// Name returns the model name
func (c *OpenAIClient) Name() string {
	return c.opts.ModelName
}

// CheckCredential reports ErrMissingCredential when no API key is configured
func (c *OpenAIClient) CheckCredential() error {
	if strings.TrimSpace(c.apiKey()) == "" {
		return core.ErrMissingCredential
	}
	return nil
}

// Generate sends prompt as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := strings.TrimSpace(c.apiKey())
	if key == "" {
		return "", core.ErrMissingCredential
	}

	clientConfig := openai.DefaultConfig(key)
	if c.opts.BaseURL != "" {
		clientConfig.BaseURL = c.opts.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.opts.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", core.ErrMalformedResponse)
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &core.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &core.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return fmt.Errorf("openai request failed: %w", err)
}
