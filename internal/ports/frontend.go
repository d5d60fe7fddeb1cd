package ports

import (
	"context"
	"math/big"

	"github.com/mikey/chainblog/internal/core"
)

// Frontend is a user-facing surface over the core services
type Frontend interface {
	// Start runs the frontend and blocks until it stops
	Start() error

	// Stop shuts the frontend down
	Stop() error
}

// Writer generates blog content
type Writer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Draft(ctx context.Context, topic string) (string, error)
}

// CampaignManager is the publishing workflow exposed to frontends
type CampaignManager interface {
	List(ctx context.Context, query core.CampaignQuery) ([]core.Campaign, error)
	Get(ctx context.Context, id int64) (*core.Campaign, error)
	Create(ctx context.Context, draft *core.CampaignDraft) (*core.SaveResult, error)
	Edit(ctx context.Context, id int64, draft *core.CampaignDraft) (*core.SaveResult, error)
	Delete(ctx context.Context, id int64) error
	Donate(ctx context.Context, id int64, amount *big.Int) error
}
