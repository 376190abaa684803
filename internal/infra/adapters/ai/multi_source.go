// File: internal/infra/adapters/ai/multi_source.go
package ai

import (
	"context"
	"errors"
	"strings"

	"job-insight-chat/internal/domain/ports/adapter"
)

var _ adapter.GenerationSource = (*MultiSource)(nil)

// MultiSource routes a prompt to a provider by its model name.
type MultiSource struct {
	defaultProvider string // e.g., "openai" or "gemini"
	byProvider      map[string]adapter.GenerationSource
	modelToProvider map[string]string // model -> provider ("openai" | "gemini")
}

func NewMultiSource(
	defaultProvider string,
	byProvider map[string]adapter.GenerationSource,
	modelToProvider map[string]string,
) *MultiSource {
	return &MultiSource{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiSource) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiSource) pick(model string) adapter.GenerationSource {
	if s := m.byProvider[m.resolveProvider(model)]; s != nil {
		return s
	}
	return m.byProvider[m.defaultProvider]
}

func (m *MultiSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	s := m.pick(prompt.Model)
	if s == nil {
		return func(yield func(adapter.Fragment, error) bool) {
			yield(adapter.Fragment{}, errors.New("no generation source for model "+prompt.Model))
		}
	}
	return s.Stream(ctx, prompt)
}
