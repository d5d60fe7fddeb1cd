// Package allowlist exempts trusted wallet addresses from moderation.
package allowlist

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Checker reports whether a campaign owner is trusted
type Checker struct {
	addresses map[common.Address]struct{}
	logger    *zap.Logger
}

// NewChecker creates a checker for the given hex addresses. Entries that
// are not valid addresses are logged and skipped.
func NewChecker(addresses []string, logger *zap.Logger) *Checker {
	c := &Checker{
		addresses: make(map[common.Address]struct{}, len(addresses)),
		logger:    logger,
	}

	for _, raw := range addresses {
		raw = strings.TrimSpace(raw)
		if !common.IsHexAddress(raw) {
			logger.Warn("Ignoring invalid allowlist entry", zap.String("entry", raw))
			continue
		}
		c.addresses[common.HexToAddress(raw)] = struct{}{}
	}

	if len(c.addresses) > 0 {
		logger.Info("Initialized author allowlist", zap.Int("addresses", len(c.addresses)))
	}
	return c
}

// IsAllowed reports whether owner is allowlisted, ignoring hex case
func (c *Checker) IsAllowed(owner string) bool {
	if len(c.addresses) == 0 || !common.IsHexAddress(owner) {
		return false
	}

	_, ok := c.addresses[common.HexToAddress(owner)]
	if ok {
		c.logger.Debug("Author is allowlisted", zap.String("owner", owner))
	}
	return ok
}
