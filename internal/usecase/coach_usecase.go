package usecase

import (
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/aiclient"
	"skillsprint/internal/domain"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuggestedQuestions are offered while the transcript holds only the greeting.
var SuggestedQuestions = []string{
	"How can I improve my resume for frontend developer roles?",
	"What skills should I learn to become a data scientist?",
	"How do I prepare for technical interviews?",
	"What's the current job market like for my field?",
	"How can I build a strong professional network?",
	"What certifications would boost my career prospects?",
}

// Transcripts loads, appends and clears per-user conversations.
type Transcripts interface {
	Load(ctx context.Context, userID string) ([]domain.Message, error)
	Append(ctx context.Context, userID string, messages []domain.Message) error
	Clear(ctx context.Context, userID string) error
}

// ChatClient streams a coach reply.
type ChatClient interface {
	Chat(ctx context.Context, history []aiclient.ChatTurn) (*aiclient.ChatStream, error)
}

type coachUsecase struct {
	transcripts Transcripts
	chat        ChatClient
	now         func() time.Time
	newID       func() string
}

func NewCoachUsecase(transcripts Transcripts, chat ChatClient) domain.CoachUsecase {
	return &coachUsecase{
		transcripts: transcripts,
		chat:        chat,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

func (u *coachUsecase) Transcript(ctx context.Context, userID string) ([]domain.Message, error) {
	msgs, err := u.transcripts.Load(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load transcript: %w", err))
	}
	return msgs, nil
}

// SendMessage stores the user's message before calling the backend, then
// stores the reply, or a fallback text when the backend failed or said
// nothing. A cancelled ctx ends the turn without storing a reply.
func (u *coachUsecase) SendMessage(ctx context.Context, userID, content string, onUpdate func(partial string)) ([]domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.BadRequest("Message must not be empty")
	}
	if onUpdate == nil {
		onUpdate = func(string) {}
	}

	msgs, err := u.Transcript(ctx, userID)
	if err != nil {
		return nil, err
	}

	msgs = append(msgs, domain.Message{
		ID:        u.newID(),
		Content:   content,
		Sender:    domain.SenderUser,
		Timestamp: u.now().UTC(),
	})
	if err := u.transcripts.Append(ctx, userID, msgs); err != nil {
		return nil, apperror.Internal(fmt.Errorf("save transcript: %w", err))
	}

	reply, err := u.streamReply(ctx, msgs, onUpdate)
	if err != nil {
		return nil, err
	}

	msgs = append(msgs, domain.Message{
		ID:        u.newID(),
		Content:   reply,
		Sender:    domain.SenderAI,
		Timestamp: u.now().UTC(),
	})
	// The view may be gone by now; the reply is still worth keeping.
	if err := u.transcripts.Append(context.WithoutCancel(ctx), userID, msgs); err != nil {
		return nil, apperror.Internal(fmt.Errorf("save transcript: %w", err))
	}
	return msgs, nil
}

// streamReply folds the streamed fragments into the running reply text.
// Only cancellation is returned as an error.
func (u *coachUsecase) streamReply(ctx context.Context, history []domain.Message, onUpdate func(string)) (string, error) {
	stream, err := u.chat.Chat(ctx, aiclient.History(history))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Log.Warn("AI coach request failed", "error", err)
		return aiclient.ChatErrorReply, nil
	}
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		sb.WriteString(stream.Text())
		onUpdate(sb.String())
	}

	if err := stream.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
		logger.Log.Warn("AI coach stream failed", "error", err)
		return aiclient.ChatErrorReply, nil
	}
	if sb.Len() == 0 {
		return aiclient.EmptyChatReply, nil
	}
	return sb.String(), nil
}

func (u *coachUsecase) Clear(ctx context.Context, userID string) ([]domain.Message, error) {
	if err := u.transcripts.Clear(ctx, userID); err != nil {
		return nil, apperror.Internal(fmt.Errorf("clear transcript: %w", err))
	}
	return u.Transcript(ctx, userID)
}
