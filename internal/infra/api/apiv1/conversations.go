// File: internal/infra/api/apiv1/conversations.go
package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/infra/logging"
	"job-insight-chat/internal/infra/metrics"
	red "job-insight-chat/internal/infra/redis"
	"job-insight-chat/internal/usecase"
)

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen --config=cfg.yaml openapi.yaml

var _ ServerInterface = (*Server)(nil)

// RateLimiter is satisfied by redis.RateLimiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server exposes the conversation use case over JSON.
type Server struct {
	conv    usecase.ConversationUseCase
	limiter RateLimiter // nil disables submit rate limiting
	limit   int
	window  time.Duration
	log     *zerolog.Logger
}

func NewServer(conv usecase.ConversationUseCase, limiter RateLimiter, limit int, window time.Duration, logger *zerolog.Logger) *Server {
	if limit <= 0 {
		limiter = nil
	}
	return &Server{conv: conv, limiter: limiter, limit: limit, window: window, log: logger}
}

// RegisterAPIV1 mounts the generated routes on r. Paths are absolute
// (/api/v1/...), so r is the root router.
func RegisterAPIV1(r chi.Router, si ServerInterface) {
	HandlerWithOptions(si, ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: writeParamError})
}

func writeParamError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusBadRequest, Error{Type: "INVALID_REQUEST", Message: err.Error()})
}

func (s *Server) SubmitMessage(w http.ResponseWriter, r *http.Request, jobId string) {
	ctx := r.Context()

	var req SubmitMessageJSONRequestBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Type: "INVALID_REQUEST", Message: "malformed JSON body"})
		return
	}
	ctx = logging.WithJobID(logging.WithUserID(ctx, req.UserId), jobId)
	log := logging.With(ctx, s.log)

	if s.limiter != nil && req.UserId != "" {
		ok, err := s.limiter.Allow(ctx, red.SubmitKey(req.UserId), s.limit, s.window)
		switch {
		case err != nil:
			// Fail open: a Redis outage must not block chat.
			log.Warn().Err(err).Msg("rate limiter unavailable")
		case !ok:
			metrics.IncRateLimited("submit")
			writeJSON(w, http.StatusTooManyRequests, Error{Type: "RATE_LIMITED", Message: "Too many messages, slow down"})
			return
		}
	}

	id, err := s.conv.Submit(ctx, req.UserId, jobId, req.Message)
	if err != nil {
		s.writeSubmitError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmitMessageResponse{Id: id})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	var credits *domain.InsufficientCreditsError
	switch {
	case errors.As(err, &credits):
		writeJSON(w, http.StatusPaymentRequired, Error{
			Type:      "INSUFFICIENT_CREDITS",
			Message:   "You have run out of credits",
			Required:  &credits.Required,
			Available: &credits.Available,
		})
	case errors.Is(err, domain.ErrJobNotFound):
		writeJSON(w, http.StatusNotFound, Error{Type: "JOB_NOT_FOUND", Message: "Job not found"})
	case errors.Is(err, domain.ErrJobIDRequired):
		writeJSON(w, http.StatusBadRequest, Error{Type: "INVALID_REQUEST", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, Error{Type: "INVALID_REQUEST", Message: "userId and message are required"})
	case errors.Is(err, domain.ErrDispatchFailed):
		log.Warn().Err(err).Msg("submit rejected: generation queue unavailable")
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, Error{Type: "DISPATCH_FAILED", Message: "The assistant is busy, try again shortly"})
	default:
		log.Error().Err(err).Msg("submit failed")
		writeJSON(w, http.StatusInternalServerError, Error{Type: "INTERNAL", Message: "internal error"})
	}
}

func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request, params ListMessagesParams) {
	jobID := ""
	if params.JobId != nil {
		jobID = *params.JobId
	}
	s.listMessages(w, r, jobID)
}

func (s *Server) ListJobMessages(w http.ResponseWriter, r *http.Request, jobId string) {
	s.listMessages(w, r, jobId)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request, jobID string) {
	msgs, err := s.conv.ListMessages(r.Context(), jobID)
	if errors.Is(err, domain.ErrJobIDRequired) {
		writeJSON(w, http.StatusOK, MessageList{Success: false, Message: ptr(domain.ErrJobIDRequired.Error())})
		return
	}
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Str("job_id", jobID).Msg("list messages failed")
		writeJSON(w, http.StatusInternalServerError, MessageList{Success: false, Message: ptr("internal error")})
		return
	}
	writeJSON(w, http.StatusOK, MessageList{Success: true, Data: toMessages(msgs)})
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request, jobId string, params GetHistoryParams) {
	limit := 0
	if params.Limit != nil {
		if *params.Limit < 0 {
			writeJSON(w, http.StatusBadRequest, Error{Type: "INVALID_REQUEST", Message: "limit must be a non-negative integer"})
			return
		}
		limit = *params.Limit
	}
	turns, err := s.conv.History(r.Context(), jobId, limit)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Str("job_id", jobId).Msg("history failed")
		writeJSON(w, http.StatusInternalServerError, Error{Type: "INTERNAL", Message: "internal error"})
		return
	}
	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, Turn{Content: t.Content, Role: t.Role, Timestamp: t.Timestamp})
	}
	writeJSON(w, http.StatusOK, out)
}

func toMessages(msgs []*model.ConversationMessage) []ConversationMessage {
	out := make([]ConversationMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ConversationMessage{
			Id:        m.ID,
			UserId:    m.UserID,
			JobId:     m.JobID,
			Text:      m.Text,
			Role:      MessageRole(m.Role),
			Status:    MessageStatus(m.Status),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
