// File: internal/usecase/conversation_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/logging"
	"job-insight-chat/internal/infra/metrics"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

// ConversationUseCase is the job insight chat surface used by the HTTP layer.
type ConversationUseCase interface {
	// Submit admits a user message and schedules the AI reply. It returns the
	// id of the stored USER message without waiting for generation.
	Submit(ctx context.Context, userID, jobID, message string) (string, error)
	// ListMessages returns every message of a job in insertion order.
	ListMessages(ctx context.Context, jobID string) ([]*model.ConversationMessage, error)
	// History returns at most limit turns, most recent first.
	History(ctx context.Context, jobID string, limit int) ([]model.Turn, error)
	CreateMessage(ctx context.Context, userID, jobID, text string, role model.Role, status *model.MessageStatus) (string, error)
	UpdateMessage(ctx context.Context, id string, text *string, status *model.MessageStatus) (*model.ConversationMessage, error)
}

type conversationUC struct {
	messages   repository.ConversationRepository
	jobs       repository.JobRepository
	ledger     repository.CreditLedger
	dispatcher adapter.JobDispatcher
	cost       int64
	log        *zerolog.Logger
}

func NewConversationUseCase(
	messages repository.ConversationRepository,
	jobs repository.JobRepository,
	ledger repository.CreditLedger,
	dispatcher adapter.JobDispatcher,
	cost int64,
	logger *zerolog.Logger,
) *conversationUC {
	if cost <= 0 {
		cost = 1
	}
	return &conversationUC{
		messages:   messages,
		jobs:       jobs,
		ledger:     ledger,
		dispatcher: dispatcher,
		cost:       cost,
		log:        logger,
	}
}

func (u *conversationUC) Submit(ctx context.Context, userID, jobID, message string) (string, error) {
	ctx = logging.WithJobID(logging.WithUserID(ctx, userID), jobID)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "ConversationUC.Submit")()

	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		metrics.IncSubmission("invalid")
		return "", domain.ErrInvalidArgument
	}
	if jobID == "" {
		metrics.IncSubmission("invalid")
		return "", domain.ErrJobIDRequired
	}

	// A user without a ledger row has no credits.
	available, err := u.ledger.Balance(ctx, repository.NoTX, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		metrics.IncSubmission("error")
		return "", fmt.Errorf("read balance: %w", err)
	}
	if available < u.cost {
		metrics.IncSubmission("insufficient_credits")
		return "", &domain.InsufficientCreditsError{Required: u.cost, Available: available}
	}

	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncSubmission("job_not_found")
		return "", domain.ErrJobNotFound
	}
	if err != nil {
		metrics.IncSubmission("error")
		return "", fmt.Errorf("load job: %w", err)
	}

	msg := model.NewConversationMessage("", userID, jobID, message, model.RoleUser, model.MessageStatusCompleted)
	if err := u.messages.Create(ctx, repository.NoTX, msg); err != nil {
		metrics.IncSubmission("error")
		return "", fmt.Errorf("%w: store user message: %v", domain.ErrPersistenceFailure, err)
	}

	task := model.GenerationTask{
		ID:      msg.ID,
		JobID:   jobID,
		UserID:  userID,
		Message: message,
		Job:     job.Context(),
	}
	// A USER message without a generation task would never get a reply, so a
	// failed enqueue takes the message back out.
	if err := u.dispatcher.Enqueue(ctx, task); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to enqueue generation task")
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if derr := u.messages.Delete(delCtx, repository.NoTX, msg.ID); derr != nil {
			log.Error().Err(derr).Str("message_id", msg.ID).Msg("failed to remove undispatched user message")
		}
		metrics.IncSubmission("dispatch_failed")
		if !errors.Is(err, domain.ErrDispatchFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
		}
		return "", err
	}
	metrics.IncSubmission("accepted")
	log.Info().Str("message_id", msg.ID).Msg("user message accepted")
	return msg.ID, nil
}

func (u *conversationUC) ListMessages(ctx context.Context, jobID string) ([]*model.ConversationMessage, error) {
	if jobID == "" {
		return nil, domain.ErrJobIDRequired
	}
	return u.messages.ListByJob(ctx, repository.NoTX, jobID)
}

func (u *conversationUC) History(ctx context.Context, jobID string, limit int) ([]model.Turn, error) {
	if jobID == "" {
		return nil, domain.ErrJobIDRequired
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recent, err := u.messages.RecentByJob(ctx, repository.NoTX, jobID, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]model.Turn, 0, len(recent))
	for _, m := range recent {
		turns = append(turns, model.TurnFromMessage(m))
	}
	return turns, nil
}

func (u *conversationUC) CreateMessage(ctx context.Context, userID, jobID, text string, role model.Role, status *model.MessageStatus) (string, error) {
	if jobID == "" {
		return "", domain.ErrJobIDRequired
	}
	st := model.MessageStatusCompleted
	if status != nil {
		st = *status
	}
	if !role.Valid() || !st.Valid() {
		return "", domain.ErrInvalidArgument
	}
	m := model.NewConversationMessage("", userID, jobID, text, role, st)
	if err := u.messages.Create(ctx, repository.NoTX, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (u *conversationUC) UpdateMessage(ctx context.Context, id string, text *string, status *model.MessageStatus) (*model.ConversationMessage, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	if status != nil && !status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	// Status changes are only accepted while the message is PENDING.
	patch := model.MessagePatch{Text: text, Status: status, OnlyIfPending: status != nil}
	return u.messages.Update(ctx, repository.NoTX, id, patch)
}
