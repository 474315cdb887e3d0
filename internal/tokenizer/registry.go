package tokenizer

import (
	"fmt"
	"strings"
)

const errorUnknownModelFormat = "model %q is not registered"

// Registry holds one Counter per model and counts text for any of them.
// Counters are built up front so CountTokens only reads shared state.
type Registry struct {
	models   []string
	counters map[string]Counter
}

// NewRegistry builds counters for models in order, skipping blanks and
// duplicates.
func NewRegistry(models []string) (*Registry, error) {
	registry := &Registry{counters: make(map[string]Counter)}
	for _, model := range models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		if _, exists := registry.counters[model]; exists {
			continue
		}
		counter, _, err := NewCounter(Config{Model: model})
		if err != nil {
			return nil, fmt.Errorf("tokenizer for %s: %w", model, err)
		}
		registry.models = append(registry.models, model)
		registry.counters[model] = counter
	}
	return registry, nil
}

// NewRegistryFromCounters wraps ready-made counters keyed by model name.
func NewRegistryFromCounters(models []string, counters map[string]Counter) *Registry {
	registry := &Registry{counters: make(map[string]Counter, len(counters))}
	for _, model := range models {
		counter, exists := counters[model]
		if !exists {
			continue
		}
		registry.models = append(registry.models, model)
		registry.counters[model] = counter
	}
	return registry
}

// Models returns the registered model names in registration order.
func (registry *Registry) Models() []string {
	if registry == nil {
		return nil
	}
	return append([]string(nil), registry.models...)
}

// CountTokens counts text with the counter registered for model.
func (registry *Registry) CountTokens(text string, model string) (int, error) {
	if registry == nil {
		return 0, fmt.Errorf(errorUnknownModelFormat, model)
	}
	counter, exists := registry.counters[model]
	if !exists {
		return 0, fmt.Errorf(errorUnknownModelFormat, model)
	}
	return counter.CountString(text)
}
