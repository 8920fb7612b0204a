package domain

import (
	"context"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of a user's AI coach transcript.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationRepository interface {
	// Get returns ErrNotFound when the user has no stored transcript.
	Get(ctx context.Context, userID string) ([]Message, error)
	Put(ctx context.Context, userID string, messages []Message) error
	Delete(ctx context.Context, userID string) error
}

type CoachUsecase interface {
	Transcript(ctx context.Context, userID string) ([]Message, error)
	// SendMessage persists the user's message, streams the reply and
	// persists it. onUpdate receives the running reply text.
	SendMessage(ctx context.Context, userID, content string, onUpdate func(partial string)) ([]Message, error)
	Clear(ctx context.Context, userID string) ([]Message, error)
}
