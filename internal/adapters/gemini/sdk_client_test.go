package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/chainblog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestSDKClient_MissingKey(t *testing.T) {
	client := NewSDKClient(staticKey(""), testOptions(""), zap.NewNop())
	defer client.Close()

	_, err := client.Generate(context.Background(), "text")
	assert.ErrorIs(t, err, core.ErrMissingCredential)
}

func TestSDKClient_CheckCredential(t *testing.T) {
	client := NewSDKClient(staticKey(""), testOptions(""), zap.NewNop())
	defer client.Close()
	assert.ErrorIs(t, client.CheckCredential(), core.ErrMissingCredential)

	keyed := NewSDKClient(staticKey("k"), testOptions(""), zap.NewNop())
	defer keyed.Close()
	assert.NoError(t, keyed.CheckCredential())
}

type countingCloser struct {
	closed atomic.Int32
}

func (c *countingCloser) Close() error {
	c.closed.Add(1)
	return nil
}

func TestSDKClient_KeyRotationWaitsForInflightCalls(t *testing.T) {
	key := "first"
	client := NewSDKClient(func() string { return key }, testOptions(""), zap.NewNop())
	closers := map[string]*countingCloser{}
	client.newSession = func(_ context.Context, k string) (*sdkSession, error) {
		closers[k] = &countingCloser{}
		return &sdkSession{key: k, closer: closers[k]}, nil
	}
	ctx := context.Background()

	first, err := client.acquire(ctx)
	require.NoError(t, err)

	key = "second"
	second, err := client.acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), closers["first"].closed.Load(), "retired client closed while a call was in flight")

	first.inflight.Done()
	assert.Eventually(t, func() bool { return closers["first"].closed.Load() == 1 }, time.Second, 5*time.Millisecond)

	second.inflight.Done()
	require.NoError(t, client.Close())
	assert.Equal(t, int32(1), closers["second"].closed.Load())
	require.NoError(t, client.Close())
	assert.Equal(t, int32(1), closers["second"].closed.Load())
}

func TestSDKClient_SameKeyReusesSession(t *testing.T) {
	client := NewSDKClient(staticKey("k"), testOptions(""), zap.NewNop())
	created := 0
	client.newSession = func(_ context.Context, k string) (*sdkSession, error) {
		created++
		return &sdkSession{key: k, closer: &countingCloser{}}, nil
	}

	for i := 0; i < 3; i++ {
		session, err := client.acquire(context.Background())
		require.NoError(t, err)
		session.inflight.Done()
	}

	assert.Equal(t, 1, created)
	require.NoError(t, client.Close())
}

func TestMapError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedErr    error
	}{
		{
			name:           "googleapi_rate_limited",
			err:            &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"},
			expectedStatus: http.StatusTooManyRequests,
			expectedErr:    core.ErrRateLimited,
		},
		{
			name:           "googleapi_server_error",
			err:            &googleapi.Error{Code: http.StatusBadGateway},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "grpc_resource_exhausted",
			err:            status.Error(codes.ResourceExhausted, "quota exceeded"),
			expectedStatus: http.StatusTooManyRequests,
			expectedErr:    core.ErrRateLimited,
		},
		{
			name:           "grpc_unavailable",
			err:            status.Error(codes.Unavailable, "try later"),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:        "blocked",
			err:         &genai.BlockedError{},
			expectedErr: core.ErrMalformedResponse,
		},
		{
			name: "other",
			err:  errors.New("connection reset"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(tc.err)
			require.Error(t, mapped)

			var statusErr *core.StatusError
			if tc.expectedStatus != 0 {
				require.ErrorAs(t, mapped, &statusErr)
				assert.Equal(t, tc.expectedStatus, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(mapped, &statusErr))
			}
			if tc.expectedErr != nil {
				assert.ErrorIs(t, mapped, tc.expectedErr)
			}
		})
	}
}
