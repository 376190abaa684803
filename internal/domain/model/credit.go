package model

import "time"

// CreditAccount holds a user's non-negative credit balance.
type CreditAccount struct {
	UserID    string
	Credits   int64
	UpdatedAt time.Time
}

// CreditSettlement records the debit made for one completed AI message.
type CreditSettlement struct {
	MessageID string
	UserID    string
	Amount    int64
	SettledAt time.Time
}
