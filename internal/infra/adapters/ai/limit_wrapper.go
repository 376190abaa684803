package ai

import (
	"context"

	"job-insight-chat/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.GenerationSource = (*limitedSource)(nil)

type limitedSource struct {
	inner adapter.GenerationSource
	sem   chan struct{}
}

// NewLimitedSource caps the number of streams open at the same time. The slot
// is held until the stream is fully consumed or abandoned.
func NewLimitedSource(inner adapter.GenerationSource, maxConcurrent int) adapter.GenerationSource {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedSource{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	return func(yield func(adapter.Fragment, error) bool) {
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			yield(adapter.Fragment{}, ctx.Err())
			return
		}
		defer func() { <-l.sem }()
		for frag, err := range l.inner.Stream(ctx, prompt) {
			if !yield(frag, err) || err != nil {
				return
			}
		}
	}
}
