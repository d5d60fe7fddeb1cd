package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const summaryPromptFormat = `Summarize the following blog post in at most three sentences. Respond with the summary only.

Post:
%s`

const draftPromptFormat = `Write a short blog post (three to five paragraphs) for a crowdfunding campaign about the following topic.
Use plain text with blank lines between paragraphs and no headings.

Topic:
%s`

// WritingAssistant generates and summarises blog content. Unlike moderation
// it reports failures, since there is no safe default for generated text.
type WritingAssistant struct {
	generator
	logger      *zap.Logger
	maxTextSize int
}

// NewWritingAssistant creates a new writing assistant
func NewWritingAssistant(
	llmClient LLMClient,
	textProcessor TextProcessor,
	limiter Limiter,
	logger *zap.Logger,
	options ModerationOptions,
) *WritingAssistant {
	return &WritingAssistant{
		generator: generator{
			llmClient:     llmClient,
			textProcessor: textProcessor,
			limiter:       limiter,
			policy:        options.Retry,
		},
		logger:      logger,
		maxTextSize: options.MaxTextSize,
	}
}

// Summarize returns a short summary of a post
func (a *WritingAssistant) Summarize(ctx context.Context, text string) (string, error) {
	out, err := a.complete(ctx, summaryPromptFormat, text)
	if err != nil {
		return "", fmt.Errorf("failed to summarize content: %w", err)
	}
	return out, nil
}

// Draft writes a post about topic
func (a *WritingAssistant) Draft(ctx context.Context, topic string) (string, error) {
	out, err := a.complete(ctx, draftPromptFormat, topic)
	if err != nil {
		return "", fmt.Errorf("failed to draft content: %w", err)
	}
	return out, nil
}

func (a *WritingAssistant) complete(ctx context.Context, format, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if a.textProcessor != nil {
		input = a.textProcessor.ProcessText(input, a.maxTextSize)
	}

	answer, attempts, err := a.generate(ctx, fmt.Sprintf(format, input))
	if err != nil {
		a.logger.Warn("Content generation failed",
			zap.String("model", a.llmClient.Name()),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrMalformedResponse
	}
	return answer, nil
}
