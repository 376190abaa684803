package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/metrics"
)

// CreditSettlement debits the ledger for a completed AI message. The ledger is
// keyed by message id, so a repeated call never charges twice.
type CreditSettlement struct {
	ledger repository.CreditLedger
	log    *zerolog.Logger
}

func NewCreditSettlement(ledger repository.CreditLedger, logger *zerolog.Logger) *CreditSettlement {
	return &CreditSettlement{ledger: ledger, log: logger}
}

func (s *CreditSettlement) Settle(ctx context.Context, userID, messageID string, cost int64) error {
	charged, err := s.ledger.Debit(ctx, repository.NoTX, userID, messageID, cost)
	switch {
	case err != nil:
		metrics.IncSettlement("failed")
		s.log.Error().Err(err).Str("user_id", userID).Str("message_id", messageID).Int64("cost", cost).
			Msg("credit settlement failed; message stays completed and uncharged")
		return err
	case !charged:
		metrics.IncSettlement("duplicate")
		s.log.Warn().Str("message_id", messageID).Msg("message already settled")
	default:
		metrics.IncSettlement("charged")
	}
	return nil
}
