package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/di"
	"github.com/mikey/chainblog/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, frontend ports.Frontend, llmClient core.LLMClient) error {
	defer logger.Sync()

	err := frontend.Start()

	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("Failed to close LLM client", zap.Error(closeErr))
		}
	}
	return err
}
