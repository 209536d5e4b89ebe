package memory

import "time"

// FactView is one fact as it appears in an assembled context.
type FactView struct {
	Type       string `json:"type"`
	Value      string `json:"value"`
	Confidence int    `json:"confidence"`
}

// MemoryItem is one message as it appears in an assembled context. Relevance
// is nil until a reprioritization pass scores the item.
type MemoryItem struct {
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Relevance *int      `json:"relevance,omitempty"`
}

type TopicView struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Relevance int    `json:"relevance"`
}

// TopicMemory groups an owner's most recent messages tagged with one topic.
type TopicMemory struct {
	Topic    TopicView    `json:"topic"`
	Messages []MemoryItem `json:"messages"`
}

// Context is the structured memory bundle assembled for one request. It is
// built fresh per request and never cached across requests.
type Context struct {
	UserFacts         []FactView    `json:"user_facts"`
	RecentMemories    []MemoryItem  `json:"recent_memories"`
	TopicMemories     []TopicMemory `json:"topic_memories"`
	IsMemoryQuery     bool          `json:"is_memory_query"`
	MemoryQueryType   string        `json:"memory_query_type,omitempty"`
	MemoryQueryTopics []string      `json:"memory_query_topics,omitempty"`
	FormattedContext  string        `json:"formatted_context"`
}
