package model

import (
	"time"
)

type Role string

const (
	RoleUser Role = "USER"
	RoleAI   Role = "AI"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAI }

// TurnRole maps a stored role to the neutral vocabulary used in prompts.
func (r Role) TurnRole() string {
	if r == RoleUser {
		return "user"
	}
	return "model"
}

type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "PENDING"
	MessageStatusCompleted MessageStatus = "COMPLETED"
	MessageStatusFailed    MessageStatus = "FAILED"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusPending, MessageStatusCompleted, MessageStatusFailed:
		return true
	}
	return false
}

func (s MessageStatus) Terminal() bool {
	return s == MessageStatusCompleted || s == MessageStatusFailed
}

// CanTransitionTo reports whether a message in status s may be patched to next.
// Staying PENDING is allowed (intermediate flushes); terminal states are final.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	if s != MessageStatusPending {
		return false
	}
	return next.Valid()
}

// ConversationMessage is one turn of a job insight conversation.
type ConversationMessage struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	JobID     string        `json:"jobId"`
	Text      string        `json:"text"`
	Role      Role          `json:"role"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func NewConversationMessage(id, userID, jobID, text string, role Role, status MessageStatus) *ConversationMessage {
	now := time.Now()
	return &ConversationMessage{
		ID:        id,
		UserID:    userID,
		JobID:     jobID,
		Text:      text,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MessagePatch is an atomic partial update. Nil fields are left unchanged.
// OnlyIfPending makes the patch conditional on the stored status still being
// PENDING, which is how the lifecycle keeps terminal states final.
type MessagePatch struct {
	Text          *string
	Status        *MessageStatus
	OnlyIfPending bool
}

// Turn is a history entry as presented to prompt assembly.
type Turn struct {
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

func TurnFromMessage(m *ConversationMessage) Turn {
	return Turn{
		Content:   m.Text,
		Role:      m.Role.TurnRole(),
		Timestamp: m.CreatedAt,
	}
}
