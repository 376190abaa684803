package ai

import (
	"context"

	"job-insight-chat/internal/domain/ports/adapter"
)

type singleFragmentSource struct {
	inner adapter.ResponseGenerator
}

// NewSingleFragmentSource exposes a whole-response generator as a stream of
// exactly one fragment.
func NewSingleFragmentSource(inner adapter.ResponseGenerator) adapter.GenerationSource {
	return &singleFragmentSource{inner: inner}
}

func (s *singleFragmentSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	return func(yield func(adapter.Fragment, error) bool) {
		text, err := s.inner.Generate(ctx, prompt)
		if err != nil {
			yield(adapter.Fragment{}, err)
			return
		}
		yield(adapter.Fragment{Text: text, Last: true}, nil)
	}
}
