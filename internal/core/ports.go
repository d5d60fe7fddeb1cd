package core

import (
	"context"
	"math/big"
	"time"
)

// LLMClient defines the interface for interacting with generative-AI services
type LLMClient interface {
	// Generate sends a prompt and returns the model's text answer
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the model in verdicts and logs
	Name() string
}

// CredentialChecker is implemented by clients that can tell without a
// remote call that no credential is configured
type CredentialChecker interface {
	CheckCredential() error
}

// ResultCache defines the interface for caching classification verdicts.
// Backend failures are logged by the implementation and reported as a miss.
type ResultCache interface {
	// Get returns the cached verdict for text if a valid entry exists
	Get(ctx context.Context, text string) (verdict bool, ok bool)

	// Put stores the verdict for text, overwriting any previous entry
	Put(ctx context.Context, text string, verdict bool)
}

// Ledger defines the remote campaign store (the crowdfunding contract)
type Ledger interface {
	GetCampaigns(ctx context.Context) ([]Campaign, error)
	CreateCampaign(ctx context.Context, draft *CampaignDraft) (int64, error)
	EditCampaign(ctx context.Context, id int64, draft *CampaignDraft) error
	DeleteCampaign(ctx context.Context, id int64) error
	DonateToCampaign(ctx context.Context, id int64, amount *big.Int) error
}

// AuthorAllowlist reports owners whose posts skip moderation
type AuthorAllowlist interface {
	IsAllowed(owner string) bool
}

// TextProcessor prepares user text before it is embedded in a prompt
type TextProcessor interface {
	ProcessText(text string, maxSize int) string
}

// Limiter throttles outbound model requests
type Limiter interface {
	Wait(ctx context.Context) error
}

// MetricsRecorder receives per-call measurements
type MetricsRecorder interface {
	RecordClassification(outcome Outcome, attempts int, elapsed time.Duration)
	RecordLedgerError(operation string)
}
