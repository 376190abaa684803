package adapter

import (
	"context"
	"iter"
)

// Fragment is one piece of model output. Last is set by sources that know
// the fragment completes the response, so consumers can skip an intermediate
// write that the terminal write would immediately replace.
type Fragment struct {
	Text string
	Last bool
}

// FragmentStream is a lazy, finite, non-restartable sequence of text
// fragments. A non-nil error ends the sequence.
type FragmentStream = iter.Seq2[Fragment, error]

// Message represents a prior chat turn handed to a model.
type Message struct {
	Role    string `json:"role"` // "user" | "model"
	Content string `json:"content"`
}

// Prompt is what a GenerationSource consumes.
type Prompt struct {
	Model   string
	System  string
	History []Message
	Message string
}

// GenerationSource is the port for a token-producing model connection.
// Implementations are constructed once per process and shared by tasks.
type GenerationSource interface {
	Stream(ctx context.Context, prompt Prompt) FragmentStream
}

// ResponseGenerator is a non-incremental model that only returns whole
// responses. Use ai.NewSingleFragmentSource to expose it as a GenerationSource.
type ResponseGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// TokenCounter estimates prompt size for metrics.
type TokenCounter interface {
	CountTokens(prompt Prompt) int
}
