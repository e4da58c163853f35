package llm

import (
	"context"
	"errors"

	"zia/internal/models"
	"zia/internal/resilience"
)

// GuardedProvider sends every generation through a resilience guard.
type GuardedProvider struct {
	provider Provider
	guard    *resilience.Guard[*models.GenerationResponse]
}

func NewGuardedProvider(provider Provider, cfg resilience.Config) *GuardedProvider {
	if cfg.Name == "" {
		cfg.Name = provider.GetProviderName()
	}
	return &GuardedProvider{
		provider: provider,
		guard:    resilience.NewGuard[*models.GenerationResponse](cfg),
	}
}

func (p *GuardedProvider) GenerateContent(ctx context.Context, systemInstruction string, prompt string, requestID string) (*models.GenerationResponse, error) {
	resp, err := p.guard.Execute(ctx, func(ctx context.Context) (*models.GenerationResponse, error) {
		return p.provider.GenerateContent(ctx, systemInstruction, prompt, requestID)
	})
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return nil, err
		}
		// breaker open or bulkhead full
		return nil, &ProviderError{
			Provider: p.GetProviderName(),
			Code:     ErrCodeServiceDown,
			Message:  "Generation rejected",
			Err:      err,
		}
	}
	return resp, nil
}

func (p *GuardedProvider) GetProviderName() string {
	return p.provider.GetProviderName()
}
