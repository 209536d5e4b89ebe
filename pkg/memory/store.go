package memory

import (
	"context"

	"github.com/freya-ai/freya/pkg/model"
)

// Store is the storage surface the memory core consumes. pkg/db provides the
// SQLite-backed implementation; tests substitute mocks.
type Store interface {
	// GetAllFacts returns every stored fact for an owner.
	GetAllFacts(ctx context.Context, ownerID string) ([]model.Fact, error)

	// GetRecentMessages returns the owner's newest messages across all
	// conversations, newest first, bounded by count and age.
	GetRecentMessages(ctx context.Context, ownerID string, limit, maxAgeDays int) ([]model.Message, error)

	// GetMessagesForOwnerTopic returns the owner's newest messages tagged
	// with a topic, newest first.
	GetMessagesForOwnerTopic(ctx context.Context, ownerID, topicID string, limit int) ([]model.Message, error)

	// SearchTopicsByContent runs a full-text search over the owner's tagged
	// messages and returns per-topic ranks with message stats. A missing
	// full-text index degrades to zero rows, not an error the caller must
	// distinguish.
	SearchTopicsByContent(ctx context.Context, ownerID, query string, limit int) ([]model.TopicSearchResult, error)

	// GetAllTopics returns every topic the owner has tagged messages in.
	GetAllTopics(ctx context.Context, ownerID string) ([]model.Topic, error)
}
