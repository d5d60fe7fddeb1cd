package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/chainblog/internal/adapters/bedrock"
	"github.com/mikey/chainblog/internal/adapters/gemini"
	"github.com/mikey/chainblog/internal/adapters/openai"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// Supported llm.provider values
const (
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
	ProviderOpenAI    = "openai"
	ProviderBedrock   = "bedrock"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration.
// API keys are read from the configuration on every call.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case ProviderGemini, ProviderGeminiSDK:
		geminiConfig, err := f.cfg.GetGemini()
		if err != nil {
			return nil, fmt.Errorf("invalid gemini configuration: %w", err)
		}
		opts := gemini.Options{
			BaseURL:         geminiConfig.BaseURL,
			ModelName:       geminiConfig.ModelName,
			Timeout:         geminiConfig.Timeout,
			MaxTokens:       geminiConfig.MaxTokens,
			Temperature:     geminiConfig.Temperature,
			TopP:            geminiConfig.TopP,
			SafetyThreshold: geminiConfig.SafetyThreshold,
		}
		f.logger.Info("Creating Gemini client",
			zap.String("model", opts.ModelName),
			zap.Bool("sdk", llmConfig.Provider == ProviderGeminiSDK))
		if llmConfig.Provider == ProviderGeminiSDK {
			return gemini.NewSDKClient(f.cfg.GeminiAPIKey, opts, f.logger), nil
		}
		return gemini.NewRESTClient(f.cfg.GeminiAPIKey, opts, f.logger), nil

	case ProviderOpenAI:
		openaiConfig := f.cfg.GetOpenAI()
		f.logger.Info("Creating OpenAI client", zap.String("model", openaiConfig.ModelName))
		return openai.NewOpenAIClient(f.cfg.OpenAIAPIKey, openai.Options{
			BaseURL:     openaiConfig.BaseURL,
			ModelName:   openaiConfig.ModelName,
			MaxTokens:   openaiConfig.MaxTokens,
			Temperature: openaiConfig.Temperature,
			TopP:        openaiConfig.TopP,
		}, f.logger), nil

	case ProviderBedrock:
		return f.createBedrockClient()

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

func (f *LLMFactory) createBedrockClient() (core.LLMClient, error) {
	bedrockConfig := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockConfig.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	f.logger.Info("Creating Bedrock client",
		zap.String("region", bedrockConfig.Region),
		zap.String("model", bedrockConfig.ModelID))

	return bedrock.NewBedrockClient(
		bedrockruntime.NewFromConfig(awsCfg),
		awsCfg.Credentials,
		bedrock.Options{
			ModelID:     bedrockConfig.ModelID,
			MaxTokens:   bedrockConfig.MaxTokens,
			Temperature: bedrockConfig.Temperature,
			TopP:        bedrockConfig.TopP,
		},
		f.logger,
	), nil
}
