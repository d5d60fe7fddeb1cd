package core

import (
	"math/big"
	"time"
)

// Outcome records which terminal state a classification ended in
type Outcome string

const (
	OutcomeCacheHit             Outcome = "cache_hit"
	OutcomeNoKey                Outcome = "no_key"
	OutcomeSuccess              Outcome = "success"
	OutcomeRateLimitedExhausted Outcome = "rate_limited_exhausted"
	OutcomeHTTPError            Outcome = "http_error"
	OutcomeException            Outcome = "exception"
	OutcomeAllowlisted          Outcome = "allowlisted"
)

// Verdict is the result of classifying a piece of text
type Verdict struct {
	IsAppropriate bool      `json:"is_appropriate"`
	Detail        string    `json:"detail,omitempty"`
	Warning       string    `json:"warning,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	ModelUsed     string    `json:"model_used,omitempty"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
	ProcessingID  string    `json:"processing_id"`
}

// Fallback reports whether the verdict is a fail-open default rather than a classification
func (v *Verdict) Fallback() bool {
	return v.Warning != ""
}

// CacheEntry is a cached verdict together with the time it was stored
type CacheEntry struct {
	Verdict  bool
	StoredAt time.Time
}

// Valid reports whether the entry is still within ttl at now
func (e CacheEntry) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) <= ttl
}

// Campaign is a fundraising record (a blog post) as read from the ledger
type Campaign struct {
	ID              int64      `json:"id"`
	Owner           string     `json:"owner"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Image           string     `json:"image,omitempty"`
	Target          *big.Int   `json:"target"`
	AmountCollected *big.Int   `json:"amount_collected"`
	Deadline        uint64     `json:"deadline"`
	Donators        []string   `json:"donators"`
	Donations       []*big.Int `json:"donations"`
}

// Active reports whether the campaign deadline lies after now
func (c *Campaign) Active(now time.Time) bool {
	deadlineMillis := new(big.Int).Mul(new(big.Int).SetUint64(c.Deadline), big.NewInt(1000))
	return deadlineMillis.Cmp(big.NewInt(now.UnixMilli())) > 0
}

// CampaignDraft holds the user-editable fields of a campaign
type CampaignDraft struct {
	Owner       string   `json:"owner"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Target      *big.Int `json:"target"`
	Deadline    uint64   `json:"deadline"`
}

// ModerationText is the text submitted for classification when a draft is saved
func (d *CampaignDraft) ModerationText() string {
	return "Title: " + d.Title + "\nDescription: " + d.Description
}
