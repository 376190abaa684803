package memory

import (
	"context"
	"sync"
	"time"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.CreditLedger = (*CreditLedger)(nil)

type CreditLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	settled  map[string]model.CreditSettlement
}

func NewCreditLedger() *CreditLedger {
	return &CreditLedger{balances: map[string]int64{}, settled: map[string]model.CreditSettlement{}}
}

func (l *CreditLedger) SetBalance(userID string, credits int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = credits
}

func (l *CreditLedger) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return b, nil
}

func (l *CreditLedger) Debit(ctx context.Context, tx repository.Tx, userID, messageID string, amount int64) (bool, error) {
	if amount <= 0 || messageID == "" {
		return false, domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, done := l.settled[messageID]; done {
		return false, nil
	}
	b, ok := l.balances[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if b < amount {
		return false, &domain.InsufficientCreditsError{Required: amount, Available: b}
	}
	l.balances[userID] = b - amount
	l.settled[messageID] = model.CreditSettlement{MessageID: messageID, UserID: userID, Amount: amount, SettledAt: time.Now()}
	return true, nil
}

// Settlements returns how many debits were recorded for messageID (0 or 1).
func (l *CreditLedger) Settlements(messageID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.settled[messageID]; ok {
		return 1
	}
	return 0
}
