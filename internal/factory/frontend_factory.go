package factory

import (
	"fmt"

	"github.com/mikey/chainblog/internal/adapters/frontend"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/metrics"
	"github.com/mikey/chainblog/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates the HTTP API from configuration
type FrontendFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	classifier *core.ModerationService
	assistant  *core.WritingAssistant
	campaigns  *core.CampaignService
	metrics    *metrics.Collector
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	classifier *core.ModerationService,
	assistant *core.WritingAssistant,
	campaigns *core.CampaignService,
	collector *metrics.Collector,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:        cfg,
		logger:     logger,
		classifier: classifier,
		assistant:  assistant,
		campaigns:  campaigns,
		metrics:    collector,
	}
}

// CreateFrontend creates the HTTP frontend
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverConfig, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	return frontend.NewHTTPFrontend(
		serverConfig.ListenAddress,
		serverConfig.ShutdownTimeout,
		f.classifier,
		f.assistant,
		f.campaigns,
		f.metrics.Handler(),
		f.logger,
	), nil
}
