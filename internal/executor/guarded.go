package executor

import (
	"context"
	"errors"

	"zia/internal/models"
	"zia/internal/resilience"
)

// Guarded sends executions through a resilience guard
type Guarded struct {
	executor Executor
	guard    *resilience.Guard[*Result]
}

func NewGuarded(executor Executor, cfg resilience.Config) *Guarded {
	if cfg.Name == "" {
		cfg.Name = executor.Name()
	}
	return &Guarded{
		executor: executor,
		guard:    resilience.NewGuard[*Result](cfg),
	}
}

func (g *Guarded) Name() string {
	return g.executor.Name()
}

func (g *Guarded) Execute(ctx context.Context, lang models.Language, source string) (*Result, error) {
	// rejected languages must not count against the breaker
	if _, err := SpecFor(lang); err != nil {
		return nil, err
	}

	result, err := g.guard.Execute(ctx, func(ctx context.Context) (*Result, error) {
		return g.executor.Execute(ctx, lang, source)
	})
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			return nil, err
		}
		return nil, &ExecutionError{Backend: g.Name(), Message: "execution rejected", Err: err}
	}
	return result, nil
}
