// Package conversation keeps each student's AI coach transcript.
package conversation

import (
	"context"
	"errors"
	"skillsprint/internal/domain"
	"time"
)

const (
	GreetingID   = "1"
	GreetingText = "Hi! I'm your AI Career Coach powered by Gemini. I'm here to help you with career guidance, skill development, interview preparation, and any professional questions you might have. How can I assist you today?"
)

// Store reads and writes whole transcripts. Concurrent writers to the same
// user's transcript are last-write-wins.
type Store struct {
	repo domain.ConversationRepository
	now  func() time.Time
}

func NewStore(repo domain.ConversationRepository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// Greeting is shown when a user has no transcript. It is never persisted
// on its own.
func Greeting(at time.Time) domain.Message {
	return domain.Message{
		ID:        GreetingID,
		Content:   GreetingText,
		Sender:    domain.SenderAI,
		Timestamp: at,
	}
}

// Load returns the stored transcript, or just the greeting when none exists.
func (s *Store) Load(ctx context.Context, userID string) ([]domain.Message, error) {
	msgs, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(msgs) == 0) {
		return []domain.Message{Greeting(s.now())}, nil
	}
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append replaces the stored transcript with messages.
func (s *Store) Append(ctx context.Context, userID string, messages []domain.Message) error {
	return s.repo.Put(ctx, userID, messages)
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	err := s.repo.Delete(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
