package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Conversation groups messages for one owner. Created lazily on the first
// message when the caller does not supply an id.
type Conversation struct {
	ID        string    `db:"id"        json:"id"`
	OwnerID   string    `db:"owner_id"  json:"owner_id"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
}

type Message struct {
	ID             string    `db:"id"              json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	OwnerID        string    `db:"owner_id"        json:"owner_id"`
	Role           Role      `db:"role"            json:"role"`
	Content        string    `db:"content"         json:"content"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}

// Fact is a single stored attribute about an owner. Category is a free-form
// label; a fixed priority-weight table exists for the known ones.
type Fact struct {
	ID       string `db:"id"       json:"id"`
	OwnerID  string `db:"owner_id" json:"owner_id"`
	Category string `db:"category" json:"category"`
	Value    string `db:"value"    json:"value"`
}

// Topic names are globally unique (case-insensitive) and shared across owners.
type Topic struct {
	ID   string `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

// TopicSearchResult is one row of the full-text topic search: the rank is
// already grouped and maxed per topic, and the per-topic message stats ride
// along so relevance scoring does not need extra round trips.
type TopicSearchResult struct {
	Topic        Topic     `json:"topic"`
	Rank         float64   `db:"rank"          json:"rank"`
	MessageCount int       `db:"message_count" json:"message_count"`
	LastTagged   time.Time `db:"last_tagged"   json:"last_tagged"`
}
