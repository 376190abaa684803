// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/db/memory"
)

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedSource emits fragments, advancing the clock by spacing before each
// one. When failAt >= 0 the stream ends with err instead of fragment failAt.
type scriptedSource struct {
	fragments []string
	spacing   time.Duration
	clock     *fakeClock
	failAt    int
	err       error
	prompts   []adapter.Prompt
}

func newScriptedSource(clock *fakeClock, spacing time.Duration, fragments ...string) *scriptedSource {
	return &scriptedSource{fragments: fragments, spacing: spacing, clock: clock, failAt: -1}
}

func (s *scriptedSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	s.prompts = append(s.prompts, prompt)
	return func(yield func(adapter.Fragment, error) bool) {
		for i, f := range s.fragments {
			if s.clock != nil {
				s.clock.Advance(s.spacing)
			}
			if i == s.failAt {
				yield(adapter.Fragment{}, s.err)
				return
			}
			if !yield(adapter.Fragment{Text: f}, nil) {
				return
			}
		}
	}
}

// recordingDispatcher captures enqueued tasks instead of running them.
type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []model.GenerationTask
	err   error
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, task model.GenerationTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

type patchRecord struct {
	At    time.Time
	Text  string
	Final bool
}

// recordingConversationRepo wraps the in-memory store, records every patch
// and can inject write failures.
type recordingConversationRepo struct {
	*memory.ConversationRepo
	clock *fakeClock

	mu           sync.Mutex
	patches      []patchRecord
	failFlushes  bool
	failTerminal map[model.MessageStatus]bool
}

func newRecordingConversationRepo(clock *fakeClock) *recordingConversationRepo {
	inner := memory.NewConversationRepo()
	if clock != nil {
		inner.SetClock(clock.Now)
	}
	return &recordingConversationRepo{ConversationRepo: inner, clock: clock, failTerminal: map[model.MessageStatus]bool{}}
}

var errInjected = errors.New("injected store failure")

func (r *recordingConversationRepo) Update(ctx context.Context, tx repository.Tx, id string, patch model.MessagePatch) (*model.ConversationMessage, error) {
	r.mu.Lock()
	final := patch.Status != nil && patch.Status.Terminal()
	if final && r.failTerminal[*patch.Status] {
		r.mu.Unlock()
		return nil, errInjected
	}
	if !final && r.failFlushes {
		r.mu.Unlock()
		return nil, errInjected
	}
	rec := patchRecord{Final: final}
	if patch.Text != nil {
		rec.Text = *patch.Text
	}
	if r.clock != nil {
		rec.At = r.clock.Now()
	}
	r.patches = append(r.patches, rec)
	r.mu.Unlock()
	return r.ConversationRepo.Update(ctx, tx, id, patch)
}

func (r *recordingConversationRepo) flushes() []patchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []patchRecord
	for _, p := range r.patches {
		if !p.Final {
			out = append(out, p)
		}
	}
	return out
}

// failingLedger wraps the in-memory ledger and fails every debit.
type failingLedger struct {
	*memory.CreditLedger
	debits int
}

func (l *failingLedger) Debit(ctx context.Context, tx repository.Tx, userID, messageID string, amount int64) (bool, error) {
	l.debits++
	return false, errInjected
}
