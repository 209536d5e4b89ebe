package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/freya-ai/freya/pkg/model"
)

// GetOrCreateTopic returns the topic with the given name, creating it on
// first use. Names are unique case-insensitively and stored lowercase.
func (s *Store) GetOrCreateTopic(ctx context.Context, name string) (model.Topic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return model.Topic{}, errors.New("empty topic name")
	}

	var topic model.Topic
	err := s.db.GetContext(ctx, &topic, `SELECT id, name FROM topics WHERE name = ? COLLATE NOCASE`, name)
	if err == nil {
		return topic, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Topic{}, err
	}

	topic = model.Topic{ID: uuid.New().String(), Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO topics (id, name) VALUES (?, ?)`, topic.ID, topic.Name); err != nil {
		return model.Topic{}, fmt.Errorf("failed to create topic %q: %w", name, err)
	}

	// A concurrent writer may have won the insert race; read back the row
	// that actually stuck.
	if err := s.db.GetContext(ctx, &topic, `SELECT id, name FROM topics WHERE name = ? COLLATE NOCASE`, name); err != nil {
		return model.Topic{}, err
	}
	return topic, nil
}

// TagMessage associates a message with a topic. Tagging the same pair twice
// is a no-op.
func (s *Store) TagMessage(ctx context.Context, messageID, topicID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_topics (message_id, topic_id) VALUES (?, ?)`,
		messageID, topicID)
	if err != nil {
		return fmt.Errorf("failed to tag message: %w", err)
	}
	return nil
}

// GetMessageTopics returns the topics a message is tagged with.
func (s *Store) GetMessageTopics(ctx context.Context, messageID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := s.db.SelectContext(ctx, &topics, `
		SELECT t.id, t.name FROM topics t
		JOIN message_topics mt ON mt.topic_id = t.id
		WHERE mt.message_id = ?
		ORDER BY t.name`,
		messageID)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// GetAllTopics returns every topic the owner has tagged messages in.
func (s *Store) GetAllTopics(ctx context.Context, ownerID string) ([]model.Topic, error) {
	key := ownerID + ":topics"
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]model.Topic), nil
	}

	var topics []model.Topic
	err := s.db.SelectContext(ctx, &topics, `
		SELECT DISTINCT t.id, t.name FROM topics t
		JOIN message_topics mt ON mt.topic_id = t.id
		JOIN messages m ON m.id = mt.message_id
		WHERE m.owner_id = ?
		ORDER BY t.name`,
		ownerID)
	if err != nil {
		return nil, err
	}

	s.cacheSet(key, topics)
	return topics, nil
}

var ftsTermRe = regexp.MustCompile(`[^\w\s]`)

// ftsQuery turns free text into an FTS5 match expression: cleaned terms,
// each quoted, joined with OR. Empty input yields an empty expression.
func ftsQuery(query string) string {
	cleaned := ftsTermRe.ReplaceAllString(strings.ToLower(query), " ")
	terms := strings.Fields(cleaned)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// SearchTopicsByContent ranks the owner's topics by full-text relevance of
// their tagged messages. Rank is the best bm25 score among the topic's
// matching messages (negated so higher is better), with per-topic message
// count and last-tagged timestamp for downstream scoring. Returns no rows
// when FTS is unavailable or the query has no indexable terms.
func (s *Store) SearchTopicsByContent(ctx context.Context, ownerID, query string, limit int) ([]model.TopicSearchResult, error) {
	if !s.hasFTS {
		return nil, nil
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	var rows []topicSearchRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT
			t.id AS topic_id,
			t.name AS topic_name,
			MAX(-bm25(messages_fts)) AS rank,
			COUNT(DISTINCT m.id) AS message_count,
			MAX(m.created_at) AS last_tagged
		FROM messages_fts f
		JOIN messages m ON m.id = f.message_id
		JOIN message_topics mt ON mt.message_id = m.id
		JOIN topics t ON t.id = mt.topic_id
		WHERE messages_fts MATCH ? AND m.owner_id = ?
		GROUP BY t.id, t.name
		ORDER BY rank DESC
		LIMIT ?`,
		match, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("topic search failed: %w", err)
	}

	results := make([]model.TopicSearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toModel())
	}
	return results, nil
}
