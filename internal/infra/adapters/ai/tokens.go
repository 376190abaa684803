package ai

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"job-insight-chat/internal/domain/ports/adapter"
)

var _ adapter.TokenCounter = (*TiktokenCounter)(nil)

const fallbackEncoding = "cl100k_base"

// TiktokenCounter estimates prompt tokens for metrics. Encodings are loaded
// once at construction, since tiktoken may fetch BPE files over the network;
// CountTokens never loads anything. Models without a loaded encoding use
// cl100k_base, or roughly four bytes per token when that is missing too.
type TiktokenCounter struct {
	encs     map[string]*tiktoken.Tiktoken // read-only after construction
	fallback *tiktoken.Tiktoken
}

func NewTiktokenCounter(models ...string) *TiktokenCounter {
	return newTiktokenCounter(tiktoken.EncodingForModel, tiktoken.GetEncoding, models...)
}

func newTiktokenCounter(forModel, byName func(string) (*tiktoken.Tiktoken, error), models ...string) *TiktokenCounter {
	c := &TiktokenCounter{encs: map[string]*tiktoken.Tiktoken{}}
	if enc, err := byName(fallbackEncoding); err == nil {
		c.fallback = enc
	}
	seen := map[string]bool{"": true}
	for _, m := range models {
		if seen[m] {
			continue
		}
		seen[m] = true
		// Non-OpenAI models have no encoding; the fallback covers them.
		if enc, err := forModel(m); err == nil {
			c.encs[m] = enc
		}
	}
	return c
}

func (c *TiktokenCounter) CountTokens(prompt adapter.Prompt) int {
	var sb strings.Builder
	sb.WriteString(prompt.System)
	for _, m := range prompt.History {
		sb.WriteString(m.Content)
	}
	sb.WriteString(prompt.Message)
	text := sb.String()

	enc := c.encs[prompt.Model]
	if enc == nil {
		enc = c.fallback
	}
	if enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
