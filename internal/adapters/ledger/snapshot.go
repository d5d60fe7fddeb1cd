package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// SnapshotLedger serves campaigns from a JSON export of the contract state.
// It is read-only; every write returns ErrReadOnly.
type SnapshotLedger struct {
	path   string
	logger *zap.Logger
}

// NewSnapshotLedger creates a snapshot ledger; the file is read on every GetCampaigns
func NewSnapshotLedger(path string, logger *zap.Logger) *SnapshotLedger {
	return &SnapshotLedger{path: path, logger: logger}
}

// GetCampaigns reads the snapshot. Ids are assigned by position when absent.
func (l *SnapshotLedger) GetCampaigns(ctx context.Context) ([]core.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign snapshot: %w", err)
	}

	var campaigns []core.Campaign
	if err := json.Unmarshal(data, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to parse campaign snapshot %s: %w", l.path, err)
	}

	for i := range campaigns {
		if campaigns[i].ID == 0 {
			campaigns[i].ID = int64(i)
		}
		if len(campaigns[i].Donators) != len(campaigns[i].Donations) {
			return nil, fmt.Errorf("campaign %d has %d donators but %d donations",
				campaigns[i].ID, len(campaigns[i].Donators), len(campaigns[i].Donations))
		}
	}

	l.logger.Debug("Loaded campaign snapshot", zap.String("path", l.path), zap.Int("campaigns", len(campaigns)))
	return campaigns, nil
}

// CreateCampaign always fails on a snapshot
func (l *SnapshotLedger) CreateCampaign(context.Context, *core.CampaignDraft) (int64, error) {
	return 0, ErrReadOnly
}

// EditCampaign always fails on a snapshot
func (l *SnapshotLedger) EditCampaign(context.Context, int64, *core.CampaignDraft) error {
	return ErrReadOnly
}

// DeleteCampaign always fails on a snapshot
func (l *SnapshotLedger) DeleteCampaign(context.Context, int64) error {
	return ErrReadOnly
}

// DonateToCampaign always fails on a snapshot
func (l *SnapshotLedger) DonateToCampaign(context.Context, int64, *big.Int) error {
	return ErrReadOnly
}
