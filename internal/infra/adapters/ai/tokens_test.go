//go:build !integration

package ai

import (
	"errors"
	"sync"
	"testing"

	"github.com/pkoukk/tiktoken-go"

	"job-insight-chat/internal/domain/ports/adapter"
)

func TestTiktokenCounter(t *testing.T) {
	var mu sync.Mutex
	loads := 0
	unavailable := func(string) (*tiktoken.Tiktoken, error) {
		mu.Lock()
		defer mu.Unlock()
		loads++
		return nil, errors.New("offline")
	}

	t.Run("should load encodings only at construction", func(t *testing.T) {
		c := newTiktokenCounter(unavailable, unavailable, "gpt-4o-mini", "gpt-4o-mini", "")
		if loads != 2 {
			t.Fatalf("expected 2 loads (fallback + one model), got %d", loads)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.CountTokens(adapter.Prompt{Model: "some-other-model", Message: "hello"})
			}()
		}
		wg.Wait()
		if loads != 2 {
			t.Fatalf("counting must not load encodings, saw %d loads", loads)
		}
	})

	t.Run("should estimate four bytes per token without an encoding", func(t *testing.T) {
		c := newTiktokenCounter(unavailable, unavailable)
		got := c.CountTokens(adapter.Prompt{
			System:  "abcd",
			History: []adapter.Message{{Role: "user", Content: "efgh"}},
			Message: "ij",
		})
		if got != 3 {
			t.Fatalf("expected 3, got %d", got)
		}
	})
}
