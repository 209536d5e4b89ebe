// Package tagging attaches extracted topics to stored messages.
package tagging

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/freya-ai/freya/pkg/db"
	"github.com/freya-ai/freya/pkg/memory"
	"github.com/freya-ai/freya/pkg/model"
)

// Service tags messages with the topics its extractor finds in their
// content. Tagging is idempotent: re-tagging a message with the same topics
// changes nothing.
type Service struct {
	logger    *log.Logger
	store     *db.Store
	extractor *memory.TopicExtractor
}

func NewService(logger *log.Logger, store *db.Store, extractor *memory.TopicExtractor) *Service {
	return &Service{logger: logger, store: store, extractor: extractor}
}

// TagMessage extracts up to topN topics from the message content, creating
// topics on first use, and associates them with the message. A failure on
// one topic does not stop the others.
func (s *Service) TagMessage(ctx context.Context, msg model.Message, topN int) ([]model.Topic, error) {
	names := s.extractor.ExtractTopics(msg.Content, topN)
	if len(names) == 0 {
		return nil, nil
	}

	var tagged []model.Topic
	var lastErr error
	for _, name := range names {
		topic, err := s.store.GetOrCreateTopic(ctx, name)
		if err != nil {
			s.logger.Warn("failed to create topic", "topic", name, "error", err)
			lastErr = err
			continue
		}
		if err := s.store.TagMessage(ctx, msg.ID, topic.ID); err != nil {
			s.logger.Warn("failed to tag message", "message", msg.ID, "topic", name, "error", err)
			lastErr = err
			continue
		}
		tagged = append(tagged, topic)
	}
	return tagged, lastErr
}
