package repository

import (
	"context"
	"time"

	"job-insight-chat/internal/domain/model"
)

// -----------------------------
// Job insight conversations
// -----------------------------

type ConversationRepository interface {
	Create(ctx context.Context, tx Tx, msg *model.ConversationMessage) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ConversationMessage, error)
	// ListByJob returns every message of a job in insertion order.
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.ConversationMessage, error)
	// RecentByJob returns at most limit messages of a job, most recent first.
	RecentByJob(ctx context.Context, tx Tx, jobID string, limit int) ([]*model.ConversationMessage, error)
	// Update applies patch atomically and always refreshes UpdatedAt. It returns
	// domain.ErrInvalidTransition when patch.OnlyIfPending is set and the stored
	// message is no longer PENDING.
	Update(ctx context.Context, tx Tx, id string, patch model.MessagePatch) (*model.ConversationMessage, error)
	// Delete removes a message. It returns domain.ErrNotFound for unknown ids.
	Delete(ctx context.Context, tx Tx, id string) error
	// FailStalePending marks PENDING messages last touched before olderThan as
	// FAILED with text and returns how many were changed.
	FailStalePending(ctx context.Context, tx Tx, olderThan time.Time, text string) (int64, error)
}
