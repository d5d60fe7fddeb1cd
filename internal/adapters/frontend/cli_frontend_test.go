package frontend

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/mikey/chainblog/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCLI(t *testing.T, opts CLIOptions, classifier *fakeClassifier, writer *fakeWriter, campaigns *fakeCampaigns) (string, error) {
	t.Helper()
	var out bytes.Buffer
	f := NewCLIFrontend(opts, &out, classifier, writer, campaigns, zap.NewNop())
	err := f.Start()
	require.NoError(t, f.Stop())
	return out.String(), err
}

func TestCLIFrontend_ModerateFromInput(t *testing.T) {
	classifier := &fakeClassifier{verdict: &core.Verdict{
		IsAppropriate: true,
		Warning:       "content moderation is not configured, content accepted without review",
		Outcome:       core.OutcomeNoKey,
	}}

	out, err := runCLI(t, CLIOptions{Command: CommandModerate, Input: strings.NewReader("hello world")}, classifier, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello world"}, classifier.texts)
	assert.Contains(t, out, "Appropriate: true")
	assert.Contains(t, out, "Warning: content moderation is not configured")
	assert.Contains(t, out, "Outcome: no_key")
}

func TestCLIFrontend_ModerateJSON(t *testing.T) {
	classifier := &fakeClassifier{verdict: &core.Verdict{IsAppropriate: false, Detail: "scam", Outcome: core.OutcomeSuccess}}

	out, err := runCLI(t, CLIOptions{Command: CommandModerate, Argument: "send me coins", JSON: true}, classifier, nil, nil)
	require.NoError(t, err)

	var verdict core.Verdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.False(t, verdict.IsAppropriate)
	assert.Equal(t, "scam", verdict.Detail)
}

func TestCLIFrontend_Writer(t *testing.T) {
	writer := &fakeWriter{out: "A short summary."}

	out, err := runCLI(t, CLIOptions{Command: CommandSummarize, Argument: "post"}, nil, writer, nil)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.\n", out)

	out, err = runCLI(t, CLIOptions{Command: CommandDraft, Argument: "solar", JSON: true}, nil, writer, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"draft":"A short summary."}`, out)

	writer.err = core.ErrMissingCredential
	_, err = runCLI(t, CLIOptions{Command: CommandDraft, Argument: "solar"}, nil, writer, nil)
	assert.ErrorIs(t, err, core.ErrMissingCredential)
}

func TestCLIFrontend_CampaignTable(t *testing.T) {
	campaigns := &fakeCampaigns{campaigns: sampleCampaigns()}
	query := core.CampaignQuery{Text: "solar", Status: core.StatusAll, SortBy: core.SortNewest}

	out, err := runCLI(t, CLIOptions{Command: CommandCampaigns, Query: query}, nil, nil, campaigns)
	require.NoError(t, err)

	assert.Equal(t, query, campaigns.query)
	assert.Contains(t, out, "Solar farm")
	assert.Contains(t, out, "0x5290...9EE7")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "2100-01-01")
	assert.Contains(t, out, "active")
}

func TestCLIFrontend_Errors(t *testing.T) {
	_, err := runCLI(t, CLIOptions{Command: "publish"}, nil, nil, nil)
	assert.ErrorContains(t, err, "unknown command")

	_, err = runCLI(t, CLIOptions{Command: CommandModerate}, &fakeClassifier{}, nil, nil)
	assert.ErrorContains(t, err, "no input")

	campaigns := &fakeCampaigns{err: errors.New("ledger down")}
	_, err = runCLI(t, CLIOptions{Command: CommandCampaigns}, nil, nil, campaigns)
	assert.ErrorContains(t, err, "ledger down")
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0", formatEther(nil))
	assert.Equal(t, "10", formatEther(mustWei("10000000000000000000")))
	assert.Equal(t, "0.25", formatEther(mustWei("250000000000000000")))
}

func mustWei(s string) *big.Int {
	v, _ := new(big.Int).SetString(s, 10)
	return v
}
