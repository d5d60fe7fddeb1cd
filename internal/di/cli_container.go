package di

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/chainblog/internal/adapters/frontend"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/logging"
	"github.com/mikey/chainblog/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider     string
	GeminiAPIKey string
	OpenAIAPIKey string

	// Campaign listing flags
	Query  string
	Status string
	Sort   string

	// Input and output flags
	InputFile  string
	JSON       bool
	Timeout    time.Duration
	Verbose    bool
	JSONLog    bool
	ConfigFile string

	// Command is the first positional argument; Argument joins the rest
	Command  string
	Argument string
}

// ParseFlags parses command line arguments (without the program name)
func ParseFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("chainblog", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: chainblog [flags] <moderate|summarize|draft|campaigns> [text or topic]\n\n")
		fs.PrintDefaults()
	}

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "", "LLM provider (gemini, gemini-sdk, openai, bedrock)")
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")

	// Campaign listing flags
	fs.StringVar(&flags.Query, "q", "", "Search text for campaigns")
	fs.StringVar(&flags.Status, "status", "all", "Campaign status filter (all, active, ended)")
	fs.StringVar(&flags.Sort, "sort", "newest", "Campaign sort order (newest, endingSoon, mostFunded, leastFunded)")

	// Input and output flags
	fs.StringVar(&flags.InputFile, "file", "", "Input file for moderate and summarize (use stdin if not specified)")
	fs.BoolVar(&flags.JSON, "json", false, "Print results as JSON")
	fs.DurationVar(&flags.Timeout, "timeout", 2*time.Minute, "Overall time limit for the command")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (flags override its values)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, errors.New("missing command")
	}
	flags.Command = fs.Arg(0)
	flags.Argument = strings.Join(fs.Args()[1:], " ")
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, stdin io.Reader, stdout io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadCLIConfig(flags)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideServices(container); err != nil {
		return nil, err
	}

	// Register CLI frontend
	if err := container.Provide(func(
		flags *CLIFlags,
		classifier *core.ModerationService,
		assistant *core.WritingAssistant,
		campaigns *core.CampaignService,
		logger *zap.Logger,
	) (ports.Frontend, error) {
		opts, err := cliOptions(flags, stdin)
		if err != nil {
			return nil, err
		}
		return frontend.NewCLIFrontend(opts, stdout, classifier, assistant, campaigns, logger), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// loadCLIConfig reads the config file when given, then applies flag overrides.
// The verdict cache is off by default since the process handles a single command.
func loadCLIConfig(flags *CLIFlags) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		var err error
		if cfg, err = config.NewFromFile(flags.ConfigFile); err != nil {
			return nil, err
		}
	} else {
		v := config.NewEmptyViper()
		v.Set("cache.enabled", false)
		cfg = config.NewFromViper(v)
	}

	if flags.Provider != "" {
		cfg.Set("llm.provider", flags.Provider)
	}
	if flags.GeminiAPIKey != "" {
		cfg.Set("gemini.api_key", flags.GeminiAPIKey)
	}
	if flags.OpenAIAPIKey != "" {
		cfg.Set("openai.api_key", flags.OpenAIAPIKey)
	}
	return cfg, nil
}

func cliOptions(flags *CLIFlags, stdin io.Reader) (frontend.CLIOptions, error) {
	status, err := core.ParseStatus(flags.Status)
	if err != nil {
		return frontend.CLIOptions{}, err
	}
	sortBy, err := core.ParseSortBy(flags.Sort)
	if err != nil {
		return frontend.CLIOptions{}, err
	}

	input := stdin
	if flags.InputFile != "" {
		data, err := os.ReadFile(flags.InputFile)
		if err != nil {
			return frontend.CLIOptions{}, fmt.Errorf("failed to read input file: %w", err)
		}
		input = strings.NewReader(string(data))
	}

	return frontend.CLIOptions{
		Command:  flags.Command,
		Input:    input,
		Argument: flags.Argument,
		Query:    core.CampaignQuery{Text: flags.Query, Status: status, SortBy: sortBy},
		JSON:     flags.JSON,
		Timeout:  flags.Timeout,
	}, nil
}
