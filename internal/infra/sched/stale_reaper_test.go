//go:build !integration

package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/db/memory"
	"job-insight-chat/internal/usecase"
)

type stubReaper struct {
	cutoffs []time.Time
	n       int64
	err     error
}

func (s *stubReaper) ReapStale(ctx context.Context, olderThan time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, olderThan)
	return s.n, s.err
}

func TestStaleReaper_RunOnce(t *testing.T) {
	logger := zerolog.Nop()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should pass now minus stale window as the cutoff", func(t *testing.T) {
		stub := &stubReaper{n: 2}
		w := NewStaleReaper(time.Minute, 5*time.Minute, stub, &logger)
		w.now = func() time.Time { return now }

		if got := w.RunOnce(context.Background()); got != 2 {
			t.Fatalf("expected 2, got %d", got)
		}
		if want := now.Add(-5 * time.Minute); !stub.cutoffs[0].Equal(want) {
			t.Errorf("expected cutoff %s, got %s", want, stub.cutoffs[0])
		}
	})

	t.Run("should swallow reaper errors", func(t *testing.T) {
		stub := &stubReaper{n: 3, err: errors.New("db down")}
		w := NewStaleReaper(time.Minute, time.Minute, stub, &logger)
		if got := w.RunOnce(context.Background()); got != 0 {
			t.Fatalf("expected 0 on error, got %d", got)
		}
	})

	t.Run("should fail old placeholders through the lifecycle", func(t *testing.T) {
		repo := memory.NewConversationRepo()
		lc := usecase.NewStatusLifecycle(repo, &logger)

		stale := model.NewConversationMessage("", "user-1", "job-1", usecase.PlaceholderText, model.RoleAI, model.MessageStatusPending)
		stale.CreatedAt = time.Now().Add(-time.Hour)
		stale.UpdatedAt = stale.CreatedAt
		if err := repo.Create(context.Background(), repository.NoTX, stale); err != nil {
			t.Fatal(err)
		}
		fresh, err := lc.Open(context.Background(), "user-1", "job-1")
		if err != nil {
			t.Fatal(err)
		}

		w := NewStaleReaper(time.Minute, 10*time.Minute, lc, &logger)
		if got := w.RunOnce(context.Background()); got != 1 {
			t.Fatalf("expected 1 reaped message, got %d", got)
		}

		got, _ := repo.FindByID(context.Background(), repository.NoTX, stale.ID)
		if got.Status != model.MessageStatusFailed || got.Text != usecase.FailedText {
			t.Errorf("unexpected stale record: %+v", got)
		}
		got, _ = repo.FindByID(context.Background(), repository.NoTX, fresh.ID)
		if got.Status != model.MessageStatusPending {
			t.Errorf("fresh placeholder should stay pending, got %s", got.Status)
		}
	})
}
