package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/params"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/ports"
	"go.uber.org/zap"
)

// CLI commands
const (
	CommandModerate  = "moderate"
	CommandSummarize = "summarize"
	CommandDraft     = "draft"
	CommandCampaigns = "campaigns"
)

const titleColumnWidth = 40

// CLIOptions selects the command a CLIFrontend runs
type CLIOptions struct {
	Command string
	// Input is read for moderate and summarize; Argument is used instead when set
	Input    io.Reader
	Argument string
	Query    core.CampaignQuery
	JSON     bool
	Timeout  time.Duration
}

// CLIFrontend runs a single command and writes the result to out
type CLIFrontend struct {
	opts       CLIOptions
	out        io.Writer
	classifier core.Classifier
	writer     ports.Writer
	campaigns  ports.CampaignManager
	logger     *zap.Logger
}

// NewCLIFrontend creates a new command line frontend
func NewCLIFrontend(
	opts CLIOptions,
	out io.Writer,
	classifier core.Classifier,
	writer ports.Writer,
	campaigns ports.CampaignManager,
	logger *zap.Logger,
) *CLIFrontend {
	return &CLIFrontend{
		opts:       opts,
		out:        out,
		classifier: classifier,
		writer:     writer,
		campaigns:  campaigns,
		logger:     logger,
	}
}

// Start runs the configured command
func (f *CLIFrontend) Start() error {
	ctx := context.Background()
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	switch f.opts.Command {
	case CommandModerate:
		return f.runModerate(ctx)
	case CommandSummarize:
		text, err := f.input()
		if err != nil {
			return err
		}
		summary, err := f.writer.Summarize(ctx, text)
		if err != nil {
			return fmt.Errorf("summarize failed: %w", err)
		}
		return f.printText("summary", summary)
	case CommandDraft:
		draft, err := f.writer.Draft(ctx, f.opts.Argument)
		if err != nil {
			return fmt.Errorf("draft failed: %w", err)
		}
		return f.printText("draft", draft)
	case CommandCampaigns:
		return f.runCampaigns(ctx)
	default:
		return fmt.Errorf("unknown command %q", f.opts.Command)
	}
}

// Stop is a no-op; Start returns when the command finishes
func (f *CLIFrontend) Stop() error {
	return nil
}

func (f *CLIFrontend) input() (string, error) {
	if f.opts.Argument != "" {
		return f.opts.Argument, nil
	}
	if f.opts.Input == nil {
		return "", errors.New("no input provided")
	}
	data, err := io.ReadAll(f.opts.Input)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func (f *CLIFrontend) runModerate(ctx context.Context) error {
	text, err := f.input()
	if err != nil {
		return err
	}

	verdict, err := f.classifier.Classify(ctx, text)
	if err != nil {
		return fmt.Errorf("moderation failed: %w", err)
	}
	f.logger.Debug("Moderation finished",
		zap.String("outcome", string(verdict.Outcome)),
		zap.String("processing_id", verdict.ProcessingID))

	if f.opts.JSON {
		return f.encode(verdict)
	}

	fmt.Fprintln(f.out, "Moderation Results:")
	fmt.Fprintf(f.out, "  Appropriate: %t\n", verdict.IsAppropriate)
	if verdict.Detail != "" {
		fmt.Fprintf(f.out, "  Reason: %s\n", verdict.Detail)
	}
	if verdict.Warning != "" {
		fmt.Fprintf(f.out, "  Warning: %s\n", verdict.Warning)
	}
	fmt.Fprintf(f.out, "  Outcome: %s\n", verdict.Outcome)
	if verdict.ModelUsed != "" {
		fmt.Fprintf(f.out, "  Model: %s\n", verdict.ModelUsed)
	}
	return nil
}

func (f *CLIFrontend) runCampaigns(ctx context.Context) error {
	campaigns, err := f.campaigns.List(ctx, f.opts.Query)
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	if f.opts.JSON {
		views := make([]campaignView, len(campaigns))
		for i := range campaigns {
			views[i] = newCampaignView(&campaigns[i])
		}
		return f.encode(views)
	}

	now := time.Now()
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: titleColumnWidth},
	})
	t.AppendHeader(table.Row{"ID", "Title", "Owner", "Raised (ETH)", "Target (ETH)", "Ends", "Status"})
	for i := range campaigns {
		c := &campaigns[i]
		status := "ended"
		if c.Active(now) {
			status = "active"
		}
		t.AppendRow(table.Row{
			c.ID,
			c.Title,
			shortAddress(c.Owner),
			formatEther(c.AmountCollected),
			formatEther(c.Target),
			formatDeadline(c.Deadline),
			status,
		})
	}
	t.AppendFooter(table.Row{"Total", len(campaigns), "", "", "", "", string(f.opts.Query.SortBy)})
	t.Render()
	return nil
}

func (f *CLIFrontend) printText(key, value string) error {
	if f.opts.JSON {
		return f.encode(map[string]string{key: value})
	}
	_, err := fmt.Fprintln(f.out, value)
	return err
}

func (f *CLIFrontend) encode(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func formatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return strings.TrimRight(strings.TrimRight(eth.Text('f', 4), "0"), ".")
}

// formatDeadline renders seconds since the epoch as a UTC date
func formatDeadline(deadline uint64) string {
	if deadline > uint64(time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC).Unix()) {
		return "never"
	}
	return time.Unix(int64(deadline), 0).UTC().Format(time.DateOnly)
}
