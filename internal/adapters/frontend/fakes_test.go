package frontend

import (
	"context"
	"math/big"

	"github.com/mikey/chainblog/internal/core"
)

type fakeClassifier struct {
	verdict *core.Verdict
	err     error
	texts   []string
}

func (c *fakeClassifier) Classify(_ context.Context, text string) (*core.Verdict, error) {
	c.texts = append(c.texts, text)
	return c.verdict, c.err
}

type fakeWriter struct {
	out string
	err error
}

func (w *fakeWriter) Summarize(_ context.Context, text string) (string, error) {
	return w.out, w.err
}

func (w *fakeWriter) Draft(_ context.Context, topic string) (string, error) {
	return w.out, w.err
}

type fakeCampaigns struct {
	campaigns []core.Campaign
	err       error
	query     core.CampaignQuery
	drafts    []*core.CampaignDraft
	editedID  int64
	deleted   []int64
	donated   *big.Int
}

func (m *fakeCampaigns) List(_ context.Context, query core.CampaignQuery) ([]core.Campaign, error) {
	m.query = query
	return m.campaigns, m.err
}

func (m *fakeCampaigns) Get(_ context.Context, id int64) (*core.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			return &m.campaigns[i], nil
		}
	}
	return nil, core.ErrCampaignNotFound
}

func (m *fakeCampaigns) Create(_ context.Context, draft *core.CampaignDraft) (*core.SaveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.drafts = append(m.drafts, draft)
	return &core.SaveResult{ID: 7, Verdict: &core.Verdict{IsAppropriate: true, Outcome: core.OutcomeSuccess}}, nil
}

func (m *fakeCampaigns) Edit(_ context.Context, id int64, draft *core.CampaignDraft) (*core.SaveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.editedID = id
	m.drafts = append(m.drafts, draft)
	return &core.SaveResult{ID: id, Verdict: &core.Verdict{IsAppropriate: true, Outcome: core.OutcomeSuccess}}, nil
}

func (m *fakeCampaigns) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *fakeCampaigns) Donate(_ context.Context, id int64, amount *big.Int) error {
	if m.err != nil {
		return m.err
	}
	m.donated = amount
	return nil
}

func sampleCampaigns() []core.Campaign {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	return []core.Campaign{
		{
			ID:              0,
			Owner:           "0x52908400098527886E0F7030069857D2E4169EE7",
			Title:           "Solar farm",
			Description:     "Panels for the community hall",
			Target:          new(big.Int).Mul(wei, big.NewInt(2)),
			AmountCollected: wei,
			Deadline:        4102444800,
			Donators:        []string{"0x8617E340B3D01FA5F11F306F4090FD50E238070D"},
			Donations:       []*big.Int{wei},
		},
	}
}
