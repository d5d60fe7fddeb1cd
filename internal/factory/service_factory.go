package factory

import (
	"fmt"
	"time"

	"github.com/mikey/chainblog/internal/allowlist"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ServiceFactory turns the moderation section of the configuration into
// the options, limiter and allowlist the core services take
type ServiceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModerationOptions builds the prompt and retry settings
func (f *ServiceFactory) CreateModerationOptions() (core.ModerationOptions, error) {
	moderationConfig, err := f.cfg.GetModeration()
	if err != nil {
		return core.ModerationOptions{}, fmt.Errorf("invalid moderation configuration: %w", err)
	}

	opts := core.DefaultModerationOptions()
	opts.Detailed = moderationConfig.Detailed
	opts.MaxTextSize = moderationConfig.MaxTextSize
	opts.Retry = retry.Policy{
		MaxRetries: moderationConfig.MaxRetries,
		BaseDelay:  moderationConfig.RetryDelay,
		Sleep:      retry.Sleep,
	}
	return opts, nil
}

// CreateLimiter returns a limiter for outbound model requests, or nil when
// moderation.requests_per_minute is zero
func (f *ServiceFactory) CreateLimiter() (core.Limiter, error) {
	moderationConfig, err := f.cfg.GetModeration()
	if err != nil {
		return nil, fmt.Errorf("invalid moderation configuration: %w", err)
	}
	if moderationConfig.RequestsPerMinute <= 0 {
		return nil, nil
	}

	f.logger.Info("Throttling model requests", zap.Int("requests_per_minute", moderationConfig.RequestsPerMinute))
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(moderationConfig.RequestsPerMinute)), 1), nil
}

// CreateAllowlist returns the authors whose posts skip moderation
func (f *ServiceFactory) CreateAllowlist() (core.AuthorAllowlist, error) {
	moderationConfig, err := f.cfg.GetModeration()
	if err != nil {
		return nil, fmt.Errorf("invalid moderation configuration: %w", err)
	}
	return allowlist.NewChecker(moderationConfig.AllowedAuthors, f.logger), nil
}
