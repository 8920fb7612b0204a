package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"skillsprint/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type conversationRepo struct {
	db *pgxpool.Pool
}

// NewConversationRepository stores each transcript as one JSONB row in ai_chats.
func NewConversationRepository(db *pgxpool.Pool) domain.ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Get(ctx context.Context, userID string) ([]domain.Message, error) {
	var raw string
	err := r.db.QueryRow(ctx, `SELECT messages::text FROM ai_chats WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var messages []domain.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return messages, nil
}

func (r *conversationRepo) Put(ctx context.Context, userID string, messages []domain.Message) error {
	if messages == nil {
		messages = []domain.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ai_chats (user_id, messages, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE SET messages = EXCLUDED.messages, updated_at = NOW()`
	_, err = r.db.Exec(ctx, query, userID, string(data))
	return err
}

func (r *conversationRepo) Delete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ai_chats WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
