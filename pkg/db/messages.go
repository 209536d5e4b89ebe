package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freya-ai/freya/pkg/model"
)

// AddMessage persists a message. Messages are immutable once created.
func (s *Store) AddMessage(ctx context.Context, conversationID, ownerID string, role model.Role, content string) (model.Message, error) {
	msg := model.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		OwnerID:        ownerID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, owner_id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.OwnerID, string(msg.Role), msg.Content, formatTime(msg.CreatedAt))
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	if s.hasFTS {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO messages_fts (message_id, owner_id, content) VALUES (?, ?, ?)`,
			msg.ID, msg.OwnerID, msg.Content)
		if err != nil {
			s.logger.Warn("failed to index message for full-text search", "message", msg.ID, "error", err)
		}
	}

	s.invalidateOwner(ownerID)
	return msg, nil
}

// GetConversationMessages returns a conversation's messages, oldest first,
// the order the completion API expects history in.
func (s *Store) GetConversationMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM messages WHERE conversation_id = ? ORDER BY created_at ASC LIMIT ?`,
		conversationID, limit)
	if err != nil {
		return nil, err
	}
	return messageModels(rows), nil
}

// GetRecentMessages returns the owner's newest messages across all
// conversations, newest first, no older than maxAgeDays.
func (s *Store) GetRecentMessages(ctx context.Context, ownerID string, limit, maxAgeDays int) ([]model.Message, error) {
	key := ownerID + ":recent:" + fmt.Sprint(limit, ":", maxAgeDays)
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]model.Message), nil
	}

	cutoff := formatTime(time.Now().UTC().AddDate(0, 0, -maxAgeDays))
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM messages WHERE owner_id = ? AND created_at >= ? ORDER BY created_at DESC LIMIT ?`,
		ownerID, cutoff, limit)
	if err != nil {
		return nil, err
	}

	messages := messageModels(rows)
	s.cacheSet(key, messages)
	return messages, nil
}

// GetMessagesForOwnerTopic returns the owner's newest messages tagged with a
// topic, newest first.
func (s *Store) GetMessagesForOwnerTopic(ctx context.Context, ownerID, topicID string, limit int) ([]model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.* FROM messages m
		JOIN message_topics mt ON mt.message_id = m.id
		WHERE m.owner_id = ? AND mt.topic_id = ?
		ORDER BY m.created_at DESC
		LIMIT ?`,
		ownerID, topicID, limit)
	if err != nil {
		return nil, err
	}
	return messageModels(rows), nil
}
