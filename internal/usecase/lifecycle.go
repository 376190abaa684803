package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/metrics"
)

const (
	PlaceholderText = "..."
	TypingSuffix    = " ..."
	FailedText      = "Sorry, I encountered an error while generating the response. Please try again."
)

// StatusLifecycle owns the writes to one AI message: a PENDING placeholder,
// any number of PENDING progress patches, then exactly one terminal patch.
// Every patch after Open is conditional on the stored status still being
// PENDING, so a terminal state can never be left.
type StatusLifecycle struct {
	messages repository.ConversationRepository
	log      *zerolog.Logger
}

func NewStatusLifecycle(messages repository.ConversationRepository, logger *zerolog.Logger) *StatusLifecycle {
	return &StatusLifecycle{messages: messages, log: logger}
}

func (l *StatusLifecycle) Open(ctx context.Context, userID, jobID string) (*model.ConversationMessage, error) {
	m := model.NewConversationMessage("", userID, jobID, PlaceholderText, model.RoleAI, model.MessageStatusPending)
	err := l.messages.Create(ctx, repository.NoTX, m)
	metrics.IncStoreWrite("placeholder", err)
	if err != nil {
		return nil, fmt.Errorf("create placeholder: %w", err)
	}
	return m, nil
}

func (l *StatusLifecycle) Progress(ctx context.Context, id, text string) error {
	_, err := l.messages.Update(ctx, repository.NoTX, id, model.MessagePatch{Text: &text, OnlyIfPending: true})
	metrics.IncStoreWrite("flush", err)
	return err
}

func (l *StatusLifecycle) Complete(ctx context.Context, id, text string) error {
	return l.terminal(ctx, id, text, model.MessageStatusCompleted)
}

func (l *StatusLifecycle) Fail(ctx context.Context, id string) error {
	return l.terminal(ctx, id, FailedText, model.MessageStatusFailed)
}

func (l *StatusLifecycle) terminal(ctx context.Context, id, text string, status model.MessageStatus) error {
	_, err := l.messages.Update(ctx, repository.NoTX, id, model.MessagePatch{Text: &text, Status: &status, OnlyIfPending: true})
	metrics.IncStoreWrite("terminal", err)
	if err != nil {
		l.log.Error().Err(err).Str("message_id", id).Str("status", string(status)).Msg("terminal write failed")
		return fmt.Errorf("mark %s %s: %w", id, status, err)
	}
	return nil
}

// ReapStale fails PENDING messages untouched since olderThan. A worker that
// died mid-stream leaves its placeholder PENDING forever otherwise.
func (l *StatusLifecycle) ReapStale(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := l.messages.FailStalePending(ctx, repository.NoTX, olderThan, FailedText)
	metrics.IncStoreWrite("reap", err)
	if err != nil {
		return 0, fmt.Errorf("reap stale messages: %w", err)
	}
	metrics.AddStaleReaped(n)
	return n, nil
}
