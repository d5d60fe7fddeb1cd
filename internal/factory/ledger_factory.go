package factory

import (
	"context"
	"fmt"

	"github.com/mikey/chainblog/internal/adapters/ledger"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// LedgerFactory creates the campaign ledger based on configuration
type LedgerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLedgerFactory creates a new ledger factory
func NewLedgerFactory(cfg *config.Config, logger *zap.Logger) *LedgerFactory {
	return &LedgerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLedger creates a snapshot or ethereum ledger
func (f *LedgerFactory) CreateLedger() (core.Ledger, error) {
	ledgerConfig, err := f.cfg.GetLedger()
	if err != nil {
		return nil, fmt.Errorf("invalid ledger configuration: %w", err)
	}

	switch ledgerConfig.Type {
	case "snapshot":
		f.logger.Info("Using campaign snapshot", zap.String("path", ledgerConfig.SnapshotPath))
		return ledger.NewSnapshotLedger(ledgerConfig.SnapshotPath, f.logger), nil
	case "ethereum":
		ctx := context.Background()
		if ledgerConfig.CallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, ledgerConfig.CallTimeout)
			defer cancel()
		}

		f.logger.Info("Connecting to ethereum node",
			zap.String("rpc_url", ledgerConfig.RPCURL),
			zap.String("contract", ledgerConfig.ContractAddress),
			zap.Int64("chain_id", ledgerConfig.ChainID))
		return ledger.DialEthereumLedger(ctx, ledgerConfig.RPCURL, ledger.EthereumOptions{
			ContractAddress: ledgerConfig.ContractAddress,
			ChainID:         ledgerConfig.ChainID,
			CallTimeout:     ledgerConfig.CallTimeout,
		}, f.cfg.LedgerPrivateKey, f.logger)
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerConfig.Type)
	}
}
