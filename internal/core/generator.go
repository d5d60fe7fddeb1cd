package core

import (
	"context"
	"errors"

	"github.com/mikey/chainblog/internal/retry"
)

// generator sends prompts to the model, retrying sequentially while the
// service reports rate limiting
type generator struct {
	llmClient     LLMClient
	textProcessor TextProcessor
	limiter       Limiter
	policy        retry.Policy
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// generate returns the answer and the number of attempts made
func (g *generator) generate(ctx context.Context, prompt string) (string, int, error) {
	if checker, ok := g.llmClient.(CredentialChecker); ok {
		if err := checker.CheckCredential(); err != nil {
			return "", 0, err
		}
	}

	var answer string
	attempts, err := g.policy.Do(ctx, isRateLimited, func(ctx context.Context) error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		var genErr error
		answer, genErr = g.llmClient.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		return "", attempts, err
	}
	return answer, attempts, nil
}
