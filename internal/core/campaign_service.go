package core

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Classifier produces a moderation verdict for text
type Classifier interface {
	Classify(ctx context.Context, text string) (*Verdict, error)
}

// SaveResult reports the outcome of creating or editing a campaign
type SaveResult struct {
	ID      int64    `json:"id"`
	Verdict *Verdict `json:"verdict"`
}

// CampaignService runs the publishing workflow: list, create, edit, delete
// and donate. Ledger failures are always returned to the caller, never
// defaulted or retried.
type CampaignService struct {
	ledger     Ledger
	classifier Classifier
	allowlist  AuthorAllowlist
	metrics    MetricsRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewCampaignService creates a new campaign service. allowlist and metrics may be nil.
func NewCampaignService(
	ledger Ledger,
	classifier Classifier,
	allowlist AuthorAllowlist,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		ledger:     ledger,
		classifier: classifier,
		allowlist:  allowlist,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// List fetches every campaign and applies the query
func (s *CampaignService) List(ctx context.Context, query CampaignQuery) ([]Campaign, error) {
	campaigns, err := s.ledger.GetCampaigns(ctx)
	if err != nil {
		return nil, s.ledgerError("get_campaigns", err)
	}
	return Apply(campaigns, query, s.now()), nil
}

// Get returns a single campaign by id
func (s *CampaignService) Get(ctx context.Context, id int64) (*Campaign, error) {
	campaigns, err := s.ledger.GetCampaigns(ctx)
	if err != nil {
		return nil, s.ledgerError("get_campaigns", err)
	}
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, id)
}

// Create moderates and publishes a new campaign
func (s *CampaignService) Create(ctx context.Context, draft *CampaignDraft) (*SaveResult, error) {
	if err := s.validate(draft, true); err != nil {
		return nil, err
	}

	verdict, err := s.moderate(ctx, draft)
	if err != nil {
		return nil, err
	}

	id, err := s.ledger.CreateCampaign(ctx, draft)
	if err != nil {
		return nil, s.ledgerError("create_campaign", err)
	}

	s.logger.Info("Campaign created",
		zap.Int64("id", id),
		zap.String("owner", draft.Owner),
		zap.String("outcome", string(verdict.Outcome)))

	return &SaveResult{ID: id, Verdict: verdict}, nil
}

// Edit moderates and updates an existing campaign
func (s *CampaignService) Edit(ctx context.Context, id int64, draft *CampaignDraft) (*SaveResult, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: negative id %d", ErrInvalidCampaign, id)
	}
	if err := s.validate(draft, false); err != nil {
		return nil, err
	}

	verdict, err := s.moderate(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.EditCampaign(ctx, id, draft); err != nil {
		return nil, s.ledgerError("edit_campaign", err)
	}

	s.logger.Info("Campaign edited", zap.Int64("id", id), zap.String("owner", draft.Owner))
	return &SaveResult{ID: id, Verdict: verdict}, nil
}

// Delete removes a campaign
func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrInvalidCampaign, id)
	}
	if err := s.ledger.DeleteCampaign(ctx, id); err != nil {
		return s.ledgerError("delete_campaign", err)
	}
	s.logger.Info("Campaign deleted", zap.Int64("id", id))
	return nil
}

// Donate sends amount (in wei) to a campaign
func (s *CampaignService) Donate(ctx context.Context, id int64, amount *big.Int) error {
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrInvalidCampaign, id)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: donation must be positive", ErrInvalidCampaign)
	}
	if err := s.ledger.DonateToCampaign(ctx, id, amount); err != nil {
		return s.ledgerError("donate", err)
	}
	s.logger.Info("Donation sent", zap.Int64("id", id), zap.String("amount", amount.String()))
	return nil
}

// moderate classifies the draft unless its owner is allowlisted
func (s *CampaignService) moderate(ctx context.Context, draft *CampaignDraft) (*Verdict, error) {
	if s.allowlist != nil && s.allowlist.IsAllowed(draft.Owner) {
		s.logger.Info("Skipping moderation for allowlisted author",
			zap.String("owner", draft.Owner),
			zap.String("action", "allowlist_bypass"))
		return &Verdict{
			IsAppropriate: true,
			Outcome:       OutcomeAllowlisted,
			ModelUsed:     "allowlist",
			AnalyzedAt:    s.now(),
		}, nil
	}

	verdict, err := s.classifier.Classify(ctx, draft.ModerationText())
	if err != nil {
		return nil, err
	}
	if !verdict.IsAppropriate {
		return nil, &RejectedError{Detail: verdict.Detail}
	}
	if verdict.Warning != "" {
		s.logger.Warn("Content accepted without moderation",
			zap.String("owner", draft.Owner),
			zap.String("warning", verdict.Warning))
	}
	return verdict, nil
}

func (s *CampaignService) validate(draft *CampaignDraft, creating bool) error {
	switch {
	case draft == nil:
		return fmt.Errorf("%w: missing campaign", ErrInvalidCampaign)
	case strings.TrimSpace(draft.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidCampaign)
	case strings.TrimSpace(draft.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidCampaign)
	case !common.IsHexAddress(draft.Owner):
		return fmt.Errorf("%w: owner %q is not an address", ErrInvalidCampaign, draft.Owner)
	case draft.Target == nil || draft.Target.Sign() <= 0:
		return fmt.Errorf("%w: target must be positive", ErrInvalidCampaign)
	}

	if creating {
		c := Campaign{Deadline: draft.Deadline}
		if !c.Active(s.now()) {
			return fmt.Errorf("%w: deadline must be in the future", ErrInvalidCampaign)
		}
	}
	return nil
}

func (s *CampaignService) ledgerError(operation string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordLedgerError(operation)
	}
	s.logger.Error("Ledger call failed", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrLedger, operation, err)
}
