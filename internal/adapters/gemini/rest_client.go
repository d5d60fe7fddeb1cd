package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response is kept for logging
const maxErrorBody = 4096

var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Options configures a Gemini client
type Options struct {
	BaseURL         string
	ModelName       string
	Timeout         time.Duration
	MaxTokens       int
	Temperature     float32
	TopP            float32
	SafetyThreshold string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"topP,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	SafetySettings   []safetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// RESTClient calls the generateContent endpoint directly over HTTP
type RESTClient struct {
	httpClient *http.Client
	apiKey     func() string
	opts       Options
	logger     *zap.Logger
}

// NewRESTClient creates a REST client. apiKey is consulted on every call
// so that a missing key is reported per request rather than at startup.
func NewRESTClient(apiKey func() string, opts Options, logger *zap.Logger) *RESTClient {
	return &RESTClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		apiKey:     apiKey,
		opts:       opts,
		logger:     logger,
	}
}

// Name returns the model name
func (c *RESTClient) Name() string {
	return c.opts.ModelName
}

// CheckCredential reports ErrMissingCredential when no API key is configured
func (c *RESTClient) CheckCredential() error {
	if strings.TrimSpace(c.apiKey()) == "" {
		return core.ErrMissingCredential
	}
	return nil
}

// Generate sends prompt as a single user turn and returns the first candidate's text
func (c *RESTClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := strings.TrimSpace(c.apiKey())
	if key == "" {
		return "", core.ErrMissingCredential
	}

	body, err := json.Marshal(c.buildRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.opts.BaseURL, "/"),
		url.PathEscape(c.opts.ModelName),
		url.QueryEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("Gemini returned an error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(errBody)))
		return "", &core.StatusError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}
	return decoded.text()
}

func (c *RESTClient) buildRequest(prompt string) *generateRequest {
	req := &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			MaxOutputTokens: c.opts.MaxTokens,
			Temperature:     c.opts.Temperature,
			TopP:            c.opts.TopP,
		},
	}
	if c.opts.SafetyThreshold != "" {
		for _, category := range harmCategories {
			req.SafetySettings = append(req.SafetySettings, safetySetting{
				Category:  category,
				Threshold: c.opts.SafetyThreshold,
			})
		}
	}
	return req
}

func (r *generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s", core.ErrMalformedResponse, r.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", core.ErrMalformedResponse)
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no parts (finish reason %q)",
			core.ErrMalformedResponse, r.Candidates[0].FinishReason)
	}
	return parts[0].Text, nil
}
