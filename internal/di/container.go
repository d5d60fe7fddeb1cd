package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/factory"
	"github.com/mikey/chainblog/internal/logging"
	"github.com/mikey/chainblog/internal/metrics"
	"github.com/mikey/chainblog/internal/ports"
)

// BuildContainer creates and configures a dependency injection container for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideServices(container); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideServices registers everything below the frontend. It expects
// *config.Config and *zap.Logger to be provided already.
func provideServices(container *dig.Container) error {
	// Register factories
	constructors := []any{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewLedgerFactory,
		factory.NewServiceFactory,
		factory.NewTextProcessorFactory,
		metrics.NewCollector,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register adapters
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LedgerFactory) (core.Ledger, error) {
		return f.CreateLedger()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) core.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(c *metrics.Collector) core.MetricsRecorder {
		return c
	}); err != nil {
		return err
	}

	// Register moderation settings
	if err := container.Provide(func(f *factory.ServiceFactory) (core.ModerationOptions, error) {
		return f.CreateModerationOptions()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ServiceFactory) (core.Limiter, error) {
		return f.CreateLimiter()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ServiceFactory) (core.AuthorAllowlist, error) {
		return f.CreateAllowlist()
	}); err != nil {
		return err
	}

	// Register core services
	if err := container.Provide(core.NewModerationService); err != nil {
		return err
	}
	if err := container.Provide(core.NewWritingAssistant); err != nil {
		return err
	}
	return container.Provide(func(
		ledger core.Ledger,
		classifier *core.ModerationService,
		allowlist core.AuthorAllowlist,
		recorder core.MetricsRecorder,
		logger *zap.Logger,
	) *core.CampaignService {
		return core.NewCampaignService(ledger, classifier, allowlist, recorder, logger)
	})
}
