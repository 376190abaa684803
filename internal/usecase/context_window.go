package usecase

import (
	"context"
	"fmt"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

const (
	DefaultHistoryLimit    = 5
	GenerationHistoryLimit = 6
)

// ContextWindowBuilder returns the last N turns of a job conversation,
// oldest first.
type ContextWindowBuilder struct {
	messages repository.ConversationRepository
}

func NewContextWindowBuilder(messages repository.ConversationRepository) *ContextWindowBuilder {
	return &ContextWindowBuilder{messages: messages}
}

func (b *ContextWindowBuilder) Build(ctx context.Context, jobID string, limit int) ([]model.Turn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recent, err := b.messages.RecentByJob(ctx, repository.NoTX, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages for job %s: %w", jobID, err)
	}
	turns := make([]model.Turn, len(recent))
	for i, m := range recent {
		turns[len(recent)-1-i] = model.TurnFromMessage(m)
	}
	return turns, nil
}
