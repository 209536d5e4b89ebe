package memory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freya-ai/freya/pkg/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAllFacts(ctx context.Context, ownerID string) ([]model.Fact, error) {
	args := m.Called(ctx, ownerID)
	facts, _ := args.Get(0).([]model.Fact)
	return facts, args.Error(1)
}

func (m *MockStore) GetRecentMessages(ctx context.Context, ownerID string, limit, maxAgeDays int) ([]model.Message, error) {
	args := m.Called(ctx, ownerID, limit, maxAgeDays)
	messages, _ := args.Get(0).([]model.Message)
	return messages, args.Error(1)
}

func (m *MockStore) GetMessagesForOwnerTopic(ctx context.Context, ownerID, topicID string, limit int) ([]model.Message, error) {
	args := m.Called(ctx, ownerID, topicID, limit)
	messages, _ := args.Get(0).([]model.Message)
	return messages, args.Error(1)
}

func (m *MockStore) SearchTopicsByContent(ctx context.Context, ownerID, query string, limit int) ([]model.TopicSearchResult, error) {
	args := m.Called(ctx, ownerID, query, limit)
	results, _ := args.Get(0).([]model.TopicSearchResult)
	return results, args.Error(1)
}

func (m *MockStore) GetAllTopics(ctx context.Context, ownerID string) ([]model.Topic, error) {
	args := m.Called(ctx, ownerID)
	topics, _ := args.Get(0).([]model.Topic)
	return topics, args.Error(1)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestScoreTopics(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("should rank recently tagged topic above stale one at equal rank", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store).WithClock(func() time.Time { return now })

		store.On("SearchTopicsByContent", ctx, "u1", "hiking", 3).Return([]model.TopicSearchResult{
			{Topic: model.Topic{ID: "t1", Name: "stale"}, Rank: 1.0, MessageCount: 4, LastTagged: now.AddDate(0, 0, -20)},
			{Topic: model.Topic{ID: "t2", Name: "fresh"}, Rank: 1.0, MessageCount: 4, LastTagged: now.AddDate(0, 0, -1)},
		}, nil)

		scored := scorer.ScoreTopics(ctx, "u1", "hiking", 3)

		require.Len(t, scored, 2)
		assert.Equal(t, "t2", scored[0].Item.ID)
		assert.Greater(t, scored[0].Score, scored[1].Score)
	})

	t.Run("should add frequency factor relative to the busiest topic", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store).WithClock(func() time.Time { return now })

		tagged := now.AddDate(0, 0, -30)
		store.On("SearchTopicsByContent", ctx, "u1", "hiking", 3).Return([]model.TopicSearchResult{
			{Topic: model.Topic{ID: "busy", Name: "alpha"}, Rank: 1.0, MessageCount: 10, LastTagged: tagged},
			{Topic: model.Topic{ID: "quiet", Name: "beta"}, Rank: 1.0, MessageCount: 1, LastTagged: tagged},
		}, nil)

		scored := scorer.ScoreTopics(ctx, "u1", "hiking", 3)

		require.Len(t, scored, 2)
		assert.Equal(t, "busy", scored[0].Item.ID)
		assert.InDelta(t, 0.45, scored[0].Score-scored[1].Score, 0.001)
	})

	t.Run("should fall back to name matching when search errors", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store)

		store.On("SearchTopicsByContent", ctx, "u1", "my work stress", 3).
			Return(nil, errors.New("no fts"))
		store.On("GetAllTopics", ctx, "u1").Return([]model.Topic{
			{ID: "t1", Name: "work"},
			{ID: "t2", Name: "travel"},
		}, nil)

		scored := scorer.ScoreTopics(ctx, "u1", "my work stress", 3)

		require.Len(t, scored, 1)
		assert.Equal(t, "t1", scored[0].Item.ID)
		store.AssertExpectations(t)
	})

	t.Run("should fall back when search finds nothing", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store)

		store.On("SearchTopicsByContent", ctx, "u1", "work", 3).Return(nil, nil)
		store.On("GetAllTopics", ctx, "u1").Return([]model.Topic{{ID: "t1", Name: "work"}}, nil)

		scored := scorer.ScoreTopics(ctx, "u1", "work", 3)

		require.Len(t, scored, 1)
		assert.Equal(t, "t1", scored[0].Item.ID)
	})

	t.Run("should return nothing when both paths come up empty", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store)

		store.On("SearchTopicsByContent", ctx, "u1", "work", 3).Return(nil, nil)
		store.On("GetAllTopics", ctx, "u1").Return(nil, errors.New("db closed"))

		assert.Empty(t, scorer.ScoreTopics(ctx, "u1", "work", 3))
	})

	t.Run("recency factor floors at zero after ten days", func(t *testing.T) {
		store := &MockStore{}
		scorer := NewTopicScorer(testLogger(), store).WithClock(func() time.Time { return now })

		assert.InDelta(t, 0.5, scorer.recencyFactor(now), 0.001)
		assert.InDelta(t, 0.25, scorer.recencyFactor(now.AddDate(0, 0, -5)), 0.001)
		assert.Zero(t, scorer.recencyFactor(now.AddDate(0, 0, -30)))
		assert.Zero(t, scorer.recencyFactor(time.Time{}))
	})
}

func TestKeywordFactor(t *testing.T) {
	t.Run("full containment plus term hit", func(t *testing.T) {
		assert.InDelta(t, 1.5, keywordFactor("work", "work"), 0.001)
	})

	t.Run("term hit only", func(t *testing.T) {
		assert.InDelta(t, 0.5, keywordFactor("work late", "workplace"), 0.001)
	})

	t.Run("no relation", func(t *testing.T) {
		assert.Zero(t, keywordFactor("gardening", "finance"))
		assert.Zero(t, keywordFactor("", "work"))
	})
}
