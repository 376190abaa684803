package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo keeps messages in insertion order. Each operation holds the
// mutex for its whole duration, which gives the atomic per-record patch the
// store contract requires.
type ConversationRepo struct {
	mu    sync.RWMutex
	order []*model.ConversationMessage
	byID  map[string]*model.ConversationMessage
	now   func() time.Time
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{byID: map[string]*model.ConversationMessage{}, now: time.Now}
}

// SetClock replaces the time source used for CreatedAt/UpdatedAt.
func (r *ConversationRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *ConversationRepo) Create(ctx context.Context, tx repository.Tx, msg *model.ConversationMessage) error {
	if msg == nil || msg.JobID == "" || !msg.Role.Valid() || !msg.Status.Valid() {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if _, ok := r.byID[msg.ID]; ok {
		return domain.ErrAlreadyExists
	}
	now := r.now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if msg.UpdatedAt.Before(msg.CreatedAt) {
		msg.UpdatedAt = msg.CreatedAt
	}
	cp := *msg
	r.order = append(r.order, &cp)
	r.byID[cp.ID] = &cp
	return nil
}

func (r *ConversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConversationMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *ConversationRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.ConversationMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ConversationMessage, 0)
	for _, m := range r.order {
		if m.JobID == jobID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ConversationRepo) RecentByJob(ctx context.Context, tx repository.Tx, jobID string, limit int) ([]*model.ConversationMessage, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ConversationMessage, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if m := r.order[i]; m.JobID == jobID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ConversationRepo) Update(ctx context.Context, tx repository.Tx, id string, patch model.MessagePatch) (*model.ConversationMessage, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.OnlyIfPending && m.Status != model.MessageStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if patch.Text != nil {
		m.Text = *patch.Text
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if now := r.now(); now.After(m.UpdatedAt) {
		m.UpdatedAt = now
	}
	cp := *m
	return &cp, nil
}

func (r *ConversationRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	for i, m := range r.order {
		if m.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ConversationRepo) FailStalePending(ctx context.Context, tx repository.Tx, olderThan time.Time, text string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := r.now()
	for _, m := range r.order {
		if m.Status != model.MessageStatusPending || !m.UpdatedAt.Before(olderThan) {
			continue
		}
		m.Status = model.MessageStatusFailed
		m.Text = text
		if now.After(m.UpdatedAt) {
			m.UpdatedAt = now
		}
		n++
	}
	return n, nil
}
