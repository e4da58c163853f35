package executor

import (
	"fmt"
	"sort"
)

type ExecutorFactory func(settings Settings) (Executor, error)

// backends register themselves from their package init
var executors = make(map[string]ExecutorFactory)

func RegisterExecutor(name string, factory ExecutorFactory) {
	executors[name] = factory
}

// NewExecutor builds the backend registered under name
func NewExecutor(name string, settings Settings) (Executor, error) {
	factory, exists := executors[name]
	if !exists {
		return nil, fmt.Errorf("unsupported executor backend: %s (registered: %v)", name, RegisteredExecutors())
	}
	return factory(settings)
}

func RegisteredExecutors() []string {
	names := make([]string, 0, len(executors))
	for name := range executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
