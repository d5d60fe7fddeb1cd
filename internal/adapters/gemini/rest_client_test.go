package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:         baseURL,
		ModelName:       "gemini-1.5-flash",
		Timeout:         5 * time.Second,
		MaxTokens:       256,
		Temperature:     0.1,
		SafetyThreshold: "BLOCK_ONLY_HIGH",
	}
}

func staticKey(key string) func() string {
	return func() string { return key }
}

func TestRESTClient_Generate(t *testing.T) {
	var received generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"true"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client := NewRESTClient(staticKey("secret"), testOptions(server.URL), zap.NewNop())
	answer, err := client.Generate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.Equal(t, "true", answer)
	require.Len(t, received.Contents, 1)
	require.Len(t, received.Contents[0].Parts, 1)
	assert.Equal(t, "classify this", received.Contents[0].Parts[0].Text)
	assert.Len(t, received.SafetySettings, len(harmCategories))
	assert.Equal(t, "BLOCK_ONLY_HIGH", received.SafetySettings[0].Threshold)
	assert.Equal(t, 256, received.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, "gemini-1.5-flash", client.Name())
}

func TestRESTClient_MissingKeyMakesNoRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewRESTClient(staticKey("  "), testOptions(server.URL), zap.NewNop())
	_, err := client.Generate(context.Background(), "text")

	assert.ErrorIs(t, err, core.ErrMissingCredential)
	assert.Equal(t, 0, requests)
}

func TestRESTClient_CheckCredential(t *testing.T) {
	assert.ErrorIs(t, NewRESTClient(staticKey(" "), testOptions(""), zap.NewNop()).CheckCredential(), core.ErrMissingCredential)
	assert.NoError(t, NewRESTClient(staticKey("k"), testOptions(""), zap.NewNop()).CheckCredential())
}

func TestRESTClient_KeyReadPerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"true"}]}}]}`))
	}))
	defer server.Close()

	key := ""
	client := NewRESTClient(func() string { return key }, testOptions(server.URL), zap.NewNop())

	_, err := client.Generate(context.Background(), "text")
	assert.ErrorIs(t, err, core.ErrMissingCredential)

	key = "added-later"
	answer, err := client.Generate(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "true", answer)
}

func TestRESTClient_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expectedErr error
		check       func(t *testing.T, err error)
	}{
		{
			name:        "rate_limited",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`,
			expectedErr: core.ErrRateLimited,
		},
		{
			name:   "server_error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":500}}`,
			check: func(t *testing.T, err error) {
				var statusErr *core.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
				assert.NotErrorIs(t, err, core.ErrRateLimited)
			},
		},
		{
			name:        "invalid_json",
			status:      http.StatusOK,
			body:        `{"candidates":[`,
			expectedErr: core.ErrMalformedResponse,
		},
		{
			name:        "no_candidates",
			status:      http.StatusOK,
			body:        `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			expectedErr: core.ErrMalformedResponse,
		},
		{
			name:        "no_parts",
			status:      http.StatusOK,
			body:        `{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`,
			expectedErr: core.ErrMalformedResponse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewRESTClient(staticKey("secret"), testOptions(server.URL), zap.NewNop())
			_, err := client.Generate(context.Background(), "text")

			require.Error(t, err)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestRESTClient_NetworkErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewRESTClient(staticKey("super-secret"), testOptions(baseURL), zap.NewNop())
	_, err := client.Generate(context.Background(), "text")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}
