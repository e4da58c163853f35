package llm

import (
	"fmt"
	"sort"
)

// builds a provider from environment configuration
type ProviderFactory func() (Provider, error)

// providers register themselves from their package init
var providers = make(map[string]ProviderFactory)

func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider builds the provider registered under name
func NewProvider(name string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s (registered: %v)", name, RegisteredProviders())
	}
	return factory()
}

// RegisteredProviders lists provider names in sorted order
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
