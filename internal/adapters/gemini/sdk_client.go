package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// SDKClient talks to Gemini through the official Go SDK. The SDK client is
// created on first use and replaced if the key changes; a replaced client is
// closed once the calls still using it have returned.
type SDKClient struct {
	apiKey func() string
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	session    *sdkSession
	newSession func(ctx context.Context, key string) (*sdkSession, error)
}

// sdkSession is one SDK client bound to one key
type sdkSession struct {
	key      string
	model    *genai.GenerativeModel
	closer   io.Closer
	inflight sync.WaitGroup
}

// NewSDKClient creates a new SDK-backed client
func NewSDKClient(apiKey func() string, opts Options, logger *zap.Logger) *SDKClient {
	c := &SDKClient{
		apiKey: apiKey,
		opts:   opts,
		logger: logger,
	}
	c.newSession = c.dial
	return c
}

// Name returns the model name
func (c *SDKClient) Name() string {
	return c.opts.ModelName
}

// CheckCredential reports ErrMissingCredential when no API key is configured
func (c *SDKClient) CheckCredential() error {
	if strings.TrimSpace(c.apiKey()) == "" {
		return core.ErrMissingCredential
	}
	return nil
}

// Generate sends prompt to the model and returns the first candidate's text
func (c *SDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	session, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer session.inflight.Done()

	resp, err := session.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", core.ErrMalformedResponse)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: unexpected part type %T", core.ErrMalformedResponse, resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// acquire returns the session for the current key with its in-flight count
// raised. The caller must call inflight.Done when finished.
func (c *SDKClient) acquire(ctx context.Context) (*sdkSession, error) {
	key := strings.TrimSpace(c.apiKey())
	if key == "" {
		return nil, core.ErrMissingCredential
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.key != key {
		session, err := c.newSession(ctx, key)
		if err != nil {
			return nil, err
		}
		if old := c.session; old != nil {
			c.logger.Debug("Gemini API key changed, retiring SDK client")
			go c.retire(old)
		}
		c.session = session
	}

	c.session.inflight.Add(1)
	return c.session, nil
}

// retire closes a replaced session after its in-flight calls return
func (c *SDKClient) retire(session *sdkSession) {
	session.inflight.Wait()
	if err := session.closer.Close(); err != nil {
		c.logger.Warn("Failed to close retired Gemini SDK client", zap.Error(err))
	}
}

func (c *SDKClient) dial(ctx context.Context, key string) (*sdkSession, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(c.opts.ModelName)
	model.SetTemperature(c.opts.Temperature)
	model.SetTopP(c.opts.TopP)
	if c.opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.opts.MaxTokens))
	}
	if threshold, ok := sdkThresholds[c.opts.SafetyThreshold]; ok {
		for _, category := range []genai.HarmCategory{
			genai.HarmCategoryHarassment,
			genai.HarmCategoryHateSpeech,
			genai.HarmCategorySexuallyExplicit,
			genai.HarmCategoryDangerousContent,
		} {
			model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
				Category:  category,
				Threshold: threshold,
			})
		}
	}

	c.logger.Debug("Created Gemini SDK client", zap.String("model", c.opts.ModelName))
	return &sdkSession{key: key, model: model, closer: client}, nil
}

var sdkThresholds = map[string]genai.HarmBlockThreshold{
	"BLOCK_LOW_AND_ABOVE":    genai.HarmBlockLowAndAbove,
	"BLOCK_MEDIUM_AND_ABOVE": genai.HarmBlockMediumAndAbove,
	"BLOCK_ONLY_HIGH":        genai.HarmBlockOnlyHigh,
	"BLOCK_NONE":             genai.HarmBlockNone,
}

// mapError translates SDK errors to the core error taxonomy
func mapError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", core.ErrMalformedResponse, blocked)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &core.StatusError{StatusCode: gErr.Code, Body: gErr.Message}
	}

	if apiErr, ok := apierror.FromError(err); ok {
		if code := apiErr.HTTPCode(); code > 0 {
			return &core.StatusError{StatusCode: code, Body: apiErr.Error()}
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.ResourceExhausted:
				return &core.StatusError{StatusCode: http.StatusTooManyRequests, Body: st.Message()}
			case codes.Unavailable:
				return &core.StatusError{StatusCode: http.StatusServiceUnavailable, Body: st.Message()}
			case codes.Internal:
				return &core.StatusError{StatusCode: http.StatusInternalServerError, Body: st.Message()}
			case codes.InvalidArgument:
				return &core.StatusError{StatusCode: http.StatusBadRequest, Body: st.Message()}
			case codes.PermissionDenied, codes.Unauthenticated:
				return &core.StatusError{StatusCode: http.StatusForbidden, Body: st.Message()}
			}
		}
	}

	return fmt.Errorf("gemini request failed: %w", err)
}

// Close waits for in-flight calls and releases the SDK client
func (c *SDKClient) Close() error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	session.inflight.Wait()
	return session.closer.Close()
}
