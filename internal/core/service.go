package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/chainblog/internal/retry"
	"go.uber.org/zap"
)

const (
	warningNoKey       = "content moderation is not configured, content accepted without review"
	warningBusy        = "moderation service busy, content accepted"
	warningHTTPError   = "moderation service error, content accepted"
	warningUnavailable = "moderation failed, content accepted"
)

const detailedPromptFormat = `You are a content moderator for a blogging platform. Decide whether the following content is appropriate for publication.
Content is inappropriate if it contains hate speech, harassment, sexually explicit material, promotion of violence or illegal activity, or an obvious scam.
If the content is appropriate, respond with only the word "true".
If it is not appropriate, respond with one or two sentences explaining why.

Content:
%s`

const briefPromptFormat = `You are a content moderator for a blogging platform. Decide whether the following content is appropriate for publication.
Respond with only "true" if it is appropriate or "false" if it is not.

Content:
%s`

// ModerationOptions tunes the classification flow
type ModerationOptions struct {
	// Detailed asks the model for an explanation when content is rejected
	Detailed bool
	// MaxTextSize caps the bytes of user text embedded in the prompt
	MaxTextSize int
	// Retry governs retries on rate limiting
	Retry retry.Policy
}

// DefaultModerationOptions returns the detailed prompt with two retries at 5s and 10s
func DefaultModerationOptions() ModerationOptions {
	return ModerationOptions{
		Detailed:    true,
		MaxTextSize: 4096,
		Retry:       retry.DefaultPolicy(),
	}
}

// ModerationService classifies text as appropriate or not, caching remote verdicts.
// Every failure fails open: the caller always gets an appropriate verdict
// with a warning rather than an error.
type ModerationService struct {
	generator
	cache   ResultCache
	logger  *zap.Logger
	metrics MetricsRecorder
	options ModerationOptions
	now     func() time.Time
}

// NewModerationService creates a new moderation service. cache, limiter and
// metrics may be nil.
func NewModerationService(
	llmClient LLMClient,
	cache ResultCache,
	textProcessor TextProcessor,
	limiter Limiter,
	metrics MetricsRecorder,
	logger *zap.Logger,
	options ModerationOptions,
) *ModerationService {
	return &ModerationService{
		generator: generator{
			llmClient:     llmClient,
			textProcessor: textProcessor,
			limiter:       limiter,
			policy:        options.Retry,
		},
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		options: options,
		now:     time.Now,
	}
}

// Classify returns the verdict for text. The error is non-nil only when ctx
// ends before a verdict is reached; such a call never writes the cache.
func (s *ModerationService) Classify(ctx context.Context, text string) (*Verdict, error) {
	start := s.now()

	if s.cache != nil {
		if appropriate, ok := s.cache.Get(ctx, text); ok {
			return s.finish(&Verdict{
				IsAppropriate: appropriate,
				Outcome:       OutcomeCacheHit,
				ModelUsed:     "cache",
			}, 0, start), nil
		}
	}

	prompt := s.buildPrompt(text)
	answer, attempts, err := s.generate(ctx, prompt)

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Debug("Classification abandoned",
			zap.Int("attempts", attempts),
			zap.Error(ctxErr))
		return nil, fmt.Errorf("classification abandoned: %w", ctxErr)
	}

	if err != nil {
		return s.fallback(err, attempts, start), nil
	}

	verdict := s.interpret(answer)
	if s.cache != nil {
		s.cache.Put(ctx, text, verdict.IsAppropriate)
	}

	if !verdict.IsAppropriate {
		s.logger.Info("Content classified as inappropriate",
			zap.String("model", verdict.ModelUsed),
			zap.String("detail", verdict.Detail))
	}

	return s.finish(verdict, attempts, start), nil
}

// interpret maps the model's answer to a verdict
func (s *ModerationService) interpret(answer string) *Verdict {
	answer = strings.TrimSpace(answer)
	verdict := &Verdict{
		Outcome:   OutcomeSuccess,
		ModelUsed: s.llmClient.Name(),
	}

	if strings.EqualFold(answer, "true") {
		verdict.IsAppropriate = true
		return verdict
	}

	verdict.Detail = answer
	return verdict
}

// fallback builds the fail-open verdict for a failed remote call
func (s *ModerationService) fallback(err error, attempts int, start time.Time) *Verdict {
	verdict := &Verdict{
		IsAppropriate: true,
		ModelUsed:     s.llmClient.Name(),
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrMissingCredential):
		verdict.Outcome = OutcomeNoKey
		verdict.Warning = warningNoKey
		attempts = 0
		s.logger.Warn("Moderation skipped, no API key configured")
	case errors.Is(err, ErrRateLimited):
		verdict.Outcome = OutcomeRateLimitedExhausted
		verdict.Warning = warningBusy
		s.logger.Warn("Moderation rate limited, retries exhausted",
			zap.Int("attempts", attempts),
			zap.Error(err))
	case errors.As(err, &statusErr):
		verdict.Outcome = OutcomeHTTPError
		verdict.Warning = warningHTTPError
		s.logger.Error("Moderation service returned an error status",
			zap.Int("status", statusErr.StatusCode),
			zap.Error(err))
	default:
		verdict.Outcome = OutcomeException
		verdict.Warning = warningUnavailable
		s.logger.Error("Moderation request failed", zap.Error(err))
	}

	return s.finish(verdict, attempts, start)
}

func (s *ModerationService) finish(verdict *Verdict, attempts int, start time.Time) *Verdict {
	verdict.AnalyzedAt = s.now()
	verdict.ProcessingID = uuid.NewString()

	elapsed := verdict.AnalyzedAt.Sub(start)
	if s.metrics != nil {
		s.metrics.RecordClassification(verdict.Outcome, attempts, elapsed)
	}

	s.logger.Debug("Classification finished",
		zap.String("processing_id", verdict.ProcessingID),
		zap.String("outcome", string(verdict.Outcome)),
		zap.Bool("appropriate", verdict.IsAppropriate),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", elapsed))

	return verdict
}

func (s *ModerationService) buildPrompt(text string) string {
	if s.textProcessor != nil {
		text = s.textProcessor.ProcessText(text, s.options.MaxTextSize)
	}
	if s.options.Detailed {
		return fmt.Sprintf(detailedPromptFormat, text)
	}
	return fmt.Sprintf(briefPromptFormat, text)
}
