package db

import (
	"time"

	"github.com/freya-ai/freya/pkg/model"
)

// Timestamps are stored as RFC3339 UTC text so lexicographic comparison in
// SQL matches chronological order.
const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type conversationRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	StartedAt string `db:"started_at"`
}

func (r conversationRow) toModel() model.Conversation {
	return model.Conversation{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		StartedAt: parseTime(r.StartedAt),
	}
}

type messageRow struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
	OwnerID        string `db:"owner_id"`
	Role           string `db:"role"`
	Content        string `db:"content"`
	CreatedAt      string `db:"created_at"`
}

func (r messageRow) toModel() model.Message {
	return model.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		OwnerID:        r.OwnerID,
		Role:           model.Role(r.Role),
		Content:        r.Content,
		CreatedAt:      parseTime(r.CreatedAt),
	}
}

func messageModels(rows []messageRow) []model.Message {
	messages := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.toModel())
	}
	return messages
}

type factRow struct {
	ID       string `db:"id"`
	OwnerID  string `db:"owner_id"`
	Category string `db:"category"`
	Value    string `db:"value"`
}

func (r factRow) toModel() model.Fact {
	return model.Fact{ID: r.ID, OwnerID: r.OwnerID, Category: r.Category, Value: r.Value}
}

type topicSearchRow struct {
	TopicID      string  `db:"topic_id"`
	TopicName    string  `db:"topic_name"`
	Rank         float64 `db:"rank"`
	MessageCount int     `db:"message_count"`
	LastTagged   string  `db:"last_tagged"`
}

func (r topicSearchRow) toModel() model.TopicSearchResult {
	return model.TopicSearchResult{
		Topic:        model.Topic{ID: r.TopicID, Name: r.TopicName},
		Rank:         r.Rank,
		MessageCount: r.MessageCount,
		LastTagged:   parseTime(r.LastTagged),
	}
}
