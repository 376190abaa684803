//go:build !integration

package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/db/memory"
)

type intakeFixture struct {
	messages   *memory.ConversationRepo
	jobs       *memory.JobRepo
	ledger     *memory.CreditLedger
	dispatcher *recordingDispatcher
	uc         *conversationUC
}

func newIntakeFixture(balance int64) *intakeFixture {
	f := &intakeFixture{
		messages:   memory.NewConversationRepo(),
		jobs:       memory.NewJobRepo(),
		ledger:     memory.NewCreditLedger(),
		dispatcher: &recordingDispatcher{},
	}
	f.jobs.Put(&model.Job{ID: "job-1", UserID: "user-1", Title: "Backend Engineer", ProcessedDescription: "Go, Postgres"})
	f.ledger.SetBalance("user-1", balance)
	logger := zerolog.Nop()
	f.uc = NewConversationUseCase(f.messages, f.jobs, f.ledger, f.dispatcher, 1, &logger)
	return f
}

func (f *intakeFixture) all(t *testing.T) []*model.ConversationMessage {
	t.Helper()
	list, err := f.messages.ListByJob(context.Background(), repository.NoTX, "job-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return list
}

func TestConversationUC_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject when balance is below cost without side effects", func(t *testing.T) {
		f := newIntakeFixture(0)

		_, err := f.uc.Submit(ctx, "user-1", "job-1", "What is the salary?")

		var insufficient *domain.InsufficientCreditsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientCreditsError, got %v", err)
		}
		if !errors.Is(err, domain.ErrInsufficientCredits) {
			t.Error("error should match ErrInsufficientCredits")
		}
		if insufficient.Required != 1 || insufficient.Available != 0 {
			t.Errorf("expected required=1 available=0, got %+v", insufficient)
		}
		if n := len(f.all(t)); n != 0 {
			t.Errorf("expected no records, got %d", n)
		}
		if len(f.dispatcher.tasks) != 0 {
			t.Error("dispatcher must not be invoked")
		}
	})

	t.Run("should treat a user without a ledger row as having no credits", func(t *testing.T) {
		f := newIntakeFixture(5)
		_, err := f.uc.Submit(ctx, "stranger", "job-1", "hi")
		var insufficient *domain.InsufficientCreditsError
		if !errors.As(err, &insufficient) || insufficient.Available != 0 {
			t.Fatalf("expected InsufficientCreditsError with available=0, got %v", err)
		}
	})

	t.Run("should reject an unknown job without side effects", func(t *testing.T) {
		f := newIntakeFixture(10)
		_, err := f.uc.Submit(ctx, "user-1", "job-404", "hi")
		if !errors.Is(err, domain.ErrJobNotFound) {
			t.Fatalf("expected ErrJobNotFound, got %v", err)
		}
		list, _ := f.messages.ListByJob(ctx, repository.NoTX, "job-404")
		if len(list) != 0 || len(f.dispatcher.tasks) != 0 {
			t.Error("expected no records and no dispatch")
		}
	})

	t.Run("should validate input", func(t *testing.T) {
		f := newIntakeFixture(10)
		if _, err := f.uc.Submit(ctx, "user-1", "", "hi"); !errors.Is(err, domain.ErrJobIDRequired) {
			t.Errorf("expected ErrJobIDRequired, got %v", err)
		}
		if _, err := f.uc.Submit(ctx, "user-1", "job-1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should store the user message and enqueue exactly one task", func(t *testing.T) {
		f := newIntakeFixture(10)

		id, err := f.uc.Submit(ctx, "user-1", "job-1", "  What is the stack?  ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		list := f.all(t)
		if len(list) != 1 {
			t.Fatalf("expected 1 record, got %d", len(list))
		}
		m := list[0]
		if m.ID != id || m.Role != model.RoleUser || m.Status != model.MessageStatusCompleted || m.Text != "What is the stack?" {
			t.Errorf("unexpected user message %+v", m)
		}

		if len(f.dispatcher.tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(f.dispatcher.tasks))
		}
		task := f.dispatcher.tasks[0]
		want := model.GenerationTask{
			ID:      id,
			JobID:   "job-1",
			UserID:  "user-1",
			Message: "What is the stack?",
			Job:     model.JobContext{Title: "Backend Engineer", ProcessedDescription: "Go, Postgres"},
		}
		if !reflect.DeepEqual(task, want) {
			t.Errorf("unexpected task\n got: %+v\nwant: %+v", task, want)
		}

		balance, _ := f.ledger.Balance(ctx, repository.NoTX, "user-1")
		if balance != 10 {
			t.Errorf("admission must not charge, balance=%d", balance)
		}
	})

	t.Run("should reject and roll back the user message when dispatch fails", func(t *testing.T) {
		f := newIntakeFixture(10)
		f.dispatcher.err = errors.New("queue full")

		id, err := f.uc.Submit(ctx, "user-1", "job-1", "hi")
		if !errors.Is(err, domain.ErrDispatchFailed) {
			t.Fatalf("expected ErrDispatchFailed, got %v", err)
		}
		if id != "" {
			t.Errorf("expected no id, got %q", id)
		}
		if n := len(f.all(t)); n != 0 {
			t.Errorf("expected the user message to be removed, got %d records", n)
		}
	})
}

func TestConversationUC_ReadPaths(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(10)
	for _, text := range []string{"t1", "t2", "t3", "t4", "t5"} {
		if _, err := f.uc.CreateMessage(ctx, "user-1", "job-1", text, model.RoleUser, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	t.Run("ListMessages requires a job id", func(t *testing.T) {
		if _, err := f.uc.ListMessages(ctx, ""); !errors.Is(err, domain.ErrJobIDRequired) {
			t.Fatalf("expected ErrJobIDRequired, got %v", err)
		}
	})

	t.Run("ListMessages returns insertion order", func(t *testing.T) {
		list, err := f.uc.ListMessages(ctx, "job-1")
		if err != nil {
			t.Fatal(err)
		}
		for i, m := range list {
			if want := []string{"t1", "t2", "t3", "t4", "t5"}[i]; m.Text != want {
				t.Errorf("position %d: got %q want %q", i, m.Text, want)
			}
		}
	})

	t.Run("History returns the most recent turns first", func(t *testing.T) {
		turns, err := f.uc.History(ctx, "job-1", 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(turns) != 2 || turns[0].Content != "t5" || turns[1].Content != "t4" {
			t.Fatalf("unexpected turns %+v", turns)
		}
		if turns[0].Role != "user" {
			t.Errorf("expected role to be mapped to 'user', got %q", turns[0].Role)
		}
	})

	t.Run("History is idempotent and defaults to five turns", func(t *testing.T) {
		a, err := f.uc.History(ctx, "job-1", 0)
		if err != nil {
			t.Fatal(err)
		}
		b, err := f.uc.History(ctx, "job-1", 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != 5 || !reflect.DeepEqual(a, b) {
			t.Fatalf("expected identical 5-turn sequences, got %v and %v", a, b)
		}
	})
}

func TestConversationUC_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(10)

	pending := model.MessageStatusPending
	id, err := f.uc.CreateMessage(ctx, "user-1", "job-1", "...", model.RoleAI, &pending)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("should patch text only and keep status", func(t *testing.T) {
		text := "partial ..."
		m, err := f.uc.UpdateMessage(ctx, id, &text, nil)
		if err != nil {
			t.Fatal(err)
		}
		if m.Text != text || m.Status != model.MessageStatusPending {
			t.Errorf("unexpected %+v", m)
		}
		if m.UpdatedAt.Before(m.CreatedAt) {
			t.Error("updatedAt went backwards")
		}
	})

	t.Run("should refuse to leave a terminal state", func(t *testing.T) {
		completed, back := model.MessageStatusCompleted, model.MessageStatusPending
		if _, err := f.uc.UpdateMessage(ctx, id, nil, &completed); err != nil {
			t.Fatal(err)
		}
		if _, err := f.uc.UpdateMessage(ctx, id, nil, &back); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("should reject invalid roles", func(t *testing.T) {
		if _, err := f.uc.CreateMessage(ctx, "user-1", "job-1", "x", model.Role("SYSTEM"), nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
