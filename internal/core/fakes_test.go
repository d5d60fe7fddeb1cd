package core_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/mikey/chainblog/internal/core"
)

type reply struct {
	answer string
	err    error
}

// scriptedLLM replays replies in order and repeats the last one
type scriptedLLM struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	onCall  func()
}

func newScriptedLLM(replies ...reply) *scriptedLLM {
	return &scriptedLLM{replies: replies}
}

func (l *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prompts = append(l.prompts, prompt)
	if l.onCall != nil {
		l.onCall()
	}
	i := len(l.prompts) - 1
	if i >= len(l.replies) {
		i = len(l.replies) - 1
	}
	return l.replies[i].answer, l.replies[i].err
}

func (l *scriptedLLM) Name() string { return "test-model" }

func (l *scriptedLLM) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

// keylessLLM reports a missing credential before any call is attempted
type keylessLLM struct {
	*scriptedLLM
}

func (keylessLLM) CheckCredential() error { return core.ErrMissingCredential }

// mapCache is a ResultCache without expiry
type mapCache struct {
	mu      sync.Mutex
	entries map[string]bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]bool)}
}

func (c *mapCache) Get(_ context.Context, text string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[text]
	return v, ok
}

func (c *mapCache) Put(_ context.Context, text string, verdict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[text] = verdict
}

type recordedCall struct {
	outcome  core.Outcome
	attempts int
}

type fakeMetrics struct {
	calls        []recordedCall
	ledgerErrors []string
}

func (m *fakeMetrics) RecordClassification(outcome core.Outcome, attempts int, _ time.Duration) {
	m.calls = append(m.calls, recordedCall{outcome: outcome, attempts: attempts})
}

func (m *fakeMetrics) RecordLedgerError(operation string) {
	m.ledgerErrors = append(m.ledgerErrors, operation)
}

type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.waits++
	return l.err
}

// testOptions uses the default policy with a sleep that only records delays
func testOptions(delays *[]time.Duration) core.ModerationOptions {
	opts := core.DefaultModerationOptions()
	opts.Retry.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
	return opts
}

// fakeLedger stores campaigns in memory and can be told to fail
type fakeLedger struct {
	campaigns []core.Campaign
	err       error
	created   []*core.CampaignDraft
	edited    map[int64]*core.CampaignDraft
	deleted   []int64
	donations map[int64]*big.Int
}

func newFakeLedger(campaigns ...core.Campaign) *fakeLedger {
	return &fakeLedger{
		campaigns: campaigns,
		edited:    make(map[int64]*core.CampaignDraft),
		donations: make(map[int64]*big.Int),
	}
}

func (l *fakeLedger) GetCampaigns(context.Context) ([]core.Campaign, error) {
	return l.campaigns, l.err
}

func (l *fakeLedger) CreateCampaign(_ context.Context, draft *core.CampaignDraft) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.created = append(l.created, draft)
	return int64(len(l.campaigns) + len(l.created) - 1), nil
}

func (l *fakeLedger) EditCampaign(_ context.Context, id int64, draft *core.CampaignDraft) error {
	if l.err != nil {
		return l.err
	}
	l.edited[id] = draft
	return nil
}

func (l *fakeLedger) DeleteCampaign(_ context.Context, id int64) error {
	if l.err != nil {
		return l.err
	}
	l.deleted = append(l.deleted, id)
	return nil
}

func (l *fakeLedger) DonateToCampaign(_ context.Context, id int64, amount *big.Int) error {
	if l.err != nil {
		return l.err
	}
	l.donations[id] = amount
	return nil
}

type staticAllowlist map[string]bool

func (a staticAllowlist) IsAllowed(owner string) bool { return a[owner] }
