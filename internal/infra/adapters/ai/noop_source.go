package ai

import (
	"context"
	"strings"
	"time"

	"job-insight-chat/internal/domain/ports/adapter"
)

var _ adapter.GenerationSource = (*NoopSource)(nil)

// NoopSource streams a canned reply word by word for local/dev runs and tests.
type NoopSource struct {
	Fragments []string
	Delay     time.Duration
	// FailAfter, when > 0, ends the stream with Err after that many fragments.
	FailAfter int
	Err       error
}

func NewNoopSource() *NoopSource {
	reply := "This is a noop AI response about the job. It echoes nothing and costs nothing."
	words := strings.SplitAfter(reply, " ")
	return &NoopSource{Fragments: words, Delay: 20 * time.Millisecond}
}

func (n *NoopSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	return func(yield func(adapter.Fragment, error) bool) {
		for i, f := range n.Fragments {
			if n.FailAfter > 0 && i == n.FailAfter {
				yield(adapter.Fragment{}, n.Err)
				return
			}
			if n.Delay > 0 {
				select {
				case <-time.After(n.Delay):
				case <-ctx.Done():
					yield(adapter.Fragment{}, ctx.Err())
					return
				}
			}
			if !yield(adapter.Fragment{Text: f}, nil) {
				return
			}
		}
	}
}
