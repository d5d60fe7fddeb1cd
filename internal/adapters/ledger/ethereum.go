// Package ledger reads and writes campaigns held by the crowdfunding contract.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// ErrReadOnly is returned by write operations when no signing key is configured
var ErrReadOnly = errors.New("ledger is read-only: no signing key configured")

// ErrReverted is returned when a mined transaction failed
var ErrReverted = errors.New("transaction reverted")

// Backend is what the contract binding needs from a node connection
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// campaignTuple mirrors the getCampaigns tuple; field order and names follow the ABI
type campaignTuple struct {
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	Image           string
	Donators        []common.Address
	Donations       []*big.Int
}

// EthereumOptions configures the contract ledger
type EthereumOptions struct {
	ContractAddress string
	ChainID         int64
	CallTimeout     time.Duration
}

// EthereumLedger implements core.Ledger against the crowdfunding contract
type EthereumLedger struct {
	backend    Backend
	contract   *bind.BoundContract
	address    common.Address
	chainID    *big.Int
	timeout    time.Duration
	privateKey func() string
	logger     *zap.Logger
}

// DialEthereumLedger connects to an RPC node and binds the contract
func DialEthereumLedger(ctx context.Context, rpcURL string, opts EthereumOptions, privateKey func() string, logger *zap.Logger) (*EthereumLedger, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	return NewEthereumLedger(client, opts, privateKey, logger)
}

// NewEthereumLedger binds the contract on an existing backend
func NewEthereumLedger(backend Backend, opts EthereumOptions, privateKey func() string, logger *zap.Logger) (*EthereumLedger, error) {
	if !common.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", opts.ContractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(crowdfundingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	address := common.HexToAddress(opts.ContractAddress)
	return &EthereumLedger{
		backend:    backend,
		contract:   bind.NewBoundContract(address, parsed, backend, backend, backend),
		address:    address,
		chainID:    big.NewInt(opts.ChainID),
		timeout:    opts.CallTimeout,
		privateKey: privateKey,
		logger:     logger,
	}, nil
}

func (l *EthereumLedger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

// GetCampaigns returns every campaign in contract order; the index is the id
func (l *EthereumLedger) GetCampaigns(ctx context.Context) ([]core.Campaign, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCampaigns"); err != nil {
		return nil, fmt.Errorf("getCampaigns call failed: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getCampaigns returned %d values", len(out))
	}

	tuples := *abi.ConvertType(out[0], new([]campaignTuple)).(*[]campaignTuple)
	campaigns := make([]core.Campaign, len(tuples))
	for i, t := range tuples {
		campaigns[i] = t.toCampaign(int64(i))
	}
	return campaigns, nil
}

func (t *campaignTuple) toCampaign(id int64) core.Campaign {
	donators := make([]string, len(t.Donators))
	for i, d := range t.Donators {
		donators[i] = d.Hex()
	}

	var deadline uint64
	if t.Deadline != nil && t.Deadline.IsUint64() {
		deadline = t.Deadline.Uint64()
	}

	return core.Campaign{
		ID:              id,
		Owner:           t.Owner.Hex(),
		Title:           t.Title,
		Description:     t.Description,
		Image:           t.Image,
		Target:          t.Target,
		AmountCollected: t.AmountCollected,
		Deadline:        deadline,
		Donators:        donators,
		Donations:       t.Donations,
	}
}

// CreateCampaign sends createCampaign and waits for it to be mined
func (l *EthereumLedger) CreateCampaign(ctx context.Context, draft *core.CampaignDraft) (int64, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	receipt, err := l.transact(ctx, nil, "createCampaign",
		common.HexToAddress(draft.Owner),
		draft.Title,
		draft.Description,
		draft.Target,
		new(big.Int).SetUint64(draft.Deadline),
		draft.Image)
	if err != nil {
		return 0, err
	}

	// The contract emits no event carrying the new id, so it is derived from
	// the campaign count at the mined block. Another create mined in the same
	// block ahead of this one makes the id wrong; callers must treat it as
	// best-effort.
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, BlockNumber: receipt.BlockNumber}
	if err := l.contract.Call(opts, &out, "numberOfCampaigns"); err != nil {
		return 0, fmt.Errorf("numberOfCampaigns call failed: %w", err)
	}
	count := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	id := count.Int64() - 1

	l.logger.Debug("Campaign id derived from campaign count",
		zap.Int64("id", id),
		zap.Stringer("block", receipt.BlockNumber),
		zap.Bool("best_effort", true))
	return id, nil
}

// EditCampaign sends editCampaign for id
func (l *EthereumLedger) EditCampaign(ctx context.Context, id int64, draft *core.CampaignDraft) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	_, err := l.transact(ctx, nil, "editCampaign",
		big.NewInt(id),
		draft.Title,
		draft.Description,
		draft.Target,
		new(big.Int).SetUint64(draft.Deadline),
		draft.Image)
	return err
}

// DeleteCampaign sends deleteCampaign for id
func (l *EthereumLedger) DeleteCampaign(ctx context.Context, id int64) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	_, err := l.transact(ctx, nil, "deleteCampaign", big.NewInt(id))
	return err
}

// DonateToCampaign sends amount wei to campaign id
func (l *EthereumLedger) DonateToCampaign(ctx context.Context, id int64, amount *big.Int) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	_, err := l.transact(ctx, amount, "donateToCampaign", big.NewInt(id))
	return err
}

func (l *EthereumLedger) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	hexKey := strings.TrimPrefix(strings.TrimSpace(l.privateKey()), "0x")
	if hexKey == "" {
		return nil, ErrReadOnly
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, l.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.Value = value
	return opts, nil
}

func (l *EthereumLedger) transact(ctx context.Context, value *big.Int, method string, params ...interface{}) (*types.Receipt, error) {
	opts, err := l.transactOpts(ctx, value)
	if err != nil {
		return nil, err
	}

	tx, err := l.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s transaction failed: %w", method, err)
	}

	l.logger.Info("Transaction sent",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.String("from", opts.From.Hex()))

	receipt, err := bind.WaitMined(ctx, l.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s: %w (tx %s)", method, ErrReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
