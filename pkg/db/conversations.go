package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freya-ai/freya/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CreateConversation starts a new conversation for an owner.
func (s *Store) CreateConversation(ctx context.Context, ownerID string) (model.Conversation, error) {
	conv := model.Conversation{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, owner_id, started_at) VALUES (?, ?, ?)`,
		conv.ID, conv.OwnerID, formatTime(conv.StartedAt))
	if err != nil {
		return model.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation returns one conversation or ErrNotFound.
func (s *Store) GetConversation(ctx context.Context, id string) (model.Conversation, error) {
	var row conversationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM conversations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Conversation{}, ErrNotFound
	}
	if err != nil {
		return model.Conversation{}, err
	}
	return row.toModel(), nil
}

// ListConversations returns an owner's conversations, newest first.
func (s *Store) ListConversations(ctx context.Context, ownerID string) ([]model.Conversation, error) {
	var rows []conversationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM conversations WHERE owner_id = ? ORDER BY started_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	conversations := make([]model.Conversation, 0, len(rows))
	for _, r := range rows {
		conversations = append(conversations, r.toModel())
	}
	return conversations, nil
}

// DeleteConversation removes a conversation and cascades to its messages,
// their topic associations, and their full-text index rows.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return err
	}

	if s.hasFTS {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM messages_fts WHERE message_id IN (SELECT id FROM messages WHERE conversation_id = ?)`, id)
		if err != nil {
			s.logger.Warn("failed to clean full-text rows for conversation", "conversation", id, "error", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.invalidateOwner(conv.OwnerID)
	return nil
}
