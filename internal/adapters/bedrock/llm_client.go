package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// ModelInvoker is the subset of the Bedrock runtime client used here
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Options configures the Bedrock client
type Options struct {
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	invoker     ModelInvoker
	credentials aws.CredentialsProvider
	opts        Options
	logger      *zap.Logger
}

// NewBedrockClient creates a new Bedrock client. When credentials is not nil
// it is checked before each call so that a missing AWS identity is reported
// as a missing credential.
func NewBedrockClient(invoker ModelInvoker, credentials aws.CredentialsProvider, opts Options, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		invoker:     invoker,
		credentials: credentials,
		opts:        opts,
		logger:      logger,
	}
}

// Name returns the model id
func (c *BedrockClient) Name() string {
	return c.opts.ModelID
}

// Generate invokes the model with prompt using the model family's request format
func (c *BedrockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.credentials != nil {
		if _, err := c.credentials.Retrieve(ctx); err != nil {
			c.logger.Debug("AWS credentials unavailable", zap.Error(err))
			return "", core.ErrMissingCredential
		}
	}

	payload, err := c.buildPayload(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.opts.ModelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", mapError(err)
	}

	return c.parseResponse(resp.Body)
}

func (c *BedrockClient) buildPayload(prompt string) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]any{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": c.opts.MaxTokens,
			"temperature":          c.opts.Temperature,
			"top_p":                c.opts.TopP,
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]any{
			"inputText": prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": c.opts.MaxTokens,
				"temperature":   c.opts.Temperature,
				"topP":          c.opts.TopP,
			},
		})
	default:
		return json.Marshal(map[string]any{
			"prompt":      prompt,
			"max_tokens":  c.opts.MaxTokens,
			"temperature": c.opts.Temperature,
			"top_p":       c.opts.TopP,
		})
	}
}

func (c *BedrockClient) parseResponse(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
		}
		return claudeResp.Completion, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("%w: empty response from Titan model", core.ErrMalformedResponse)
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Generation} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: no text field in response", core.ErrMalformedResponse)
	}
}

func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.opts.ModelID, "anthropic.claude")
}

func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.opts.ModelID, "amazon.titan")
}

func mapError(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return fmt.Errorf("bedrock throttled: %w", core.ErrRateLimited)
	}

	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() > 0 {
		return &core.StatusError{StatusCode: httpErr.HTTPStatusCode(), Body: err.Error()}
	}

	return fmt.Errorf("failed to invoke Bedrock model: %w", err)
}
