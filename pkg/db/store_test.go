package db

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freya-ai/freya/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", log.New(io.Discard), DefaultCachePolicy())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConversations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("create and get", func(t *testing.T) {
		conv, err := store.CreateConversation(ctx, "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, conv.ID)
		assert.Equal(t, "u1", conv.OwnerID)
		assert.False(t, conv.StartedAt.IsZero())

		got, err := store.GetConversation(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, got.ID)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetConversation(ctx, "no-such-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := newTestStore(t)
		first, err := store.CreateConversation(ctx, "u2")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		second, err := store.CreateConversation(ctx, "u2")
		require.NoError(t, err)

		conversations, err := store.ListConversations(ctx, "u2")
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		assert.Equal(t, second.ID, conversations[0].ID)
		assert.Equal(t, first.ID, conversations[1].ID)
	})

	t.Run("delete cascades to messages", func(t *testing.T) {
		conv, err := store.CreateConversation(ctx, "u3")
		require.NoError(t, err)
		_, err = store.AddMessage(ctx, conv.ID, "u3", model.RoleUser, "hello")
		require.NoError(t, err)

		require.NoError(t, store.DeleteConversation(ctx, conv.ID))

		_, err = store.GetConversation(ctx, conv.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		messages, err := store.GetConversationMessages(ctx, conv.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("delete missing returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteConversation(ctx, "no-such-id"), ErrNotFound)
	})
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	conv, err := store.CreateConversation(ctx, "u1")
	require.NoError(t, err)

	first, err := store.AddMessage(ctx, conv.ID, "u1", model.RoleUser, "first message")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := store.AddMessage(ctx, conv.ID, "u1", model.RoleAssistant, "second message")
	require.NoError(t, err)

	t.Run("conversation messages come back oldest first", func(t *testing.T) {
		messages, err := store.GetConversationMessages(ctx, conv.ID, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, first.ID, messages[0].ID)
		assert.Equal(t, second.ID, messages[1].ID)
		assert.Equal(t, model.RoleUser, messages[0].Role)
	})

	t.Run("recent messages come back newest first", func(t *testing.T) {
		messages, err := store.GetRecentMessages(ctx, "u1", 10, 30)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, second.ID, messages[0].ID)
	})

	t.Run("recent messages honor the limit", func(t *testing.T) {
		messages, err := store.GetRecentMessages(ctx, "u1", 1, 30)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, second.ID, messages[0].ID)
	})

	t.Run("recent messages exclude other owners", func(t *testing.T) {
		messages, err := store.GetRecentMessages(ctx, "someone-else", 10, 30)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}

func TestUpsertFact(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	fact, created, err := store.UpsertFact(ctx, "u1", "job", "Software engineer at Google")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, fact.ID)

	t.Run("same normalized value is a no-op", func(t *testing.T) {
		dup, created, err := store.UpsertFact(ctx, "u1", "job", "software  engineer at google!")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, fact.ID, dup.ID)

		facts, err := store.GetAllFacts(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, facts, 1)
	})

	t.Run("different category stores separately", func(t *testing.T) {
		_, created, err := store.UpsertFact(ctx, "u1", "interests", "software engineer at google")
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("facts are scoped to the owner", func(t *testing.T) {
		facts, err := store.GetAllFacts(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, facts)
	})
}

func TestTopics(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("get or create is case insensitive", func(t *testing.T) {
		topic, err := store.GetOrCreateTopic(ctx, "Work")
		require.NoError(t, err)
		assert.Equal(t, "work", topic.Name)

		again, err := store.GetOrCreateTopic(ctx, "WORK")
		require.NoError(t, err)
		assert.Equal(t, topic.ID, again.ID)
	})

	t.Run("empty name errors", func(t *testing.T) {
		_, err := store.GetOrCreateTopic(ctx, "   ")
		assert.Error(t, err)
	})

	t.Run("tagging is idempotent", func(t *testing.T) {
		conv, err := store.CreateConversation(ctx, "u1")
		require.NoError(t, err)
		msg, err := store.AddMessage(ctx, conv.ID, "u1", model.RoleUser, "long day at the office")
		require.NoError(t, err)
		topic, err := store.GetOrCreateTopic(ctx, "work")
		require.NoError(t, err)

		require.NoError(t, store.TagMessage(ctx, msg.ID, topic.ID))
		require.NoError(t, store.TagMessage(ctx, msg.ID, topic.ID))

		topics, err := store.GetMessageTopics(ctx, msg.ID)
		require.NoError(t, err)
		assert.Len(t, topics, 1)

		ownerTopics, err := store.GetAllTopics(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, ownerTopics, 1)
		assert.Equal(t, "work", ownerTopics[0].Name)
	})

	t.Run("owner topics exclude untagged owners", func(t *testing.T) {
		topics, err := store.GetAllTopics(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, topics)
	})
}

func TestSearchTopicsByContent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	conv, err := store.CreateConversation(ctx, "u1")
	require.NoError(t, err)

	tag := func(content, topicName string) model.Message {
		t.Helper()
		msg, err := store.AddMessage(ctx, conv.ID, "u1", model.RoleUser, content)
		require.NoError(t, err)
		topic, err := store.GetOrCreateTopic(ctx, topicName)
		require.NoError(t, err)
		require.NoError(t, store.TagMessage(ctx, msg.ID, topic.ID))
		return msg
	}

	tag("went hiking in the alps last weekend", "travel")
	tag("hiking boots were worth the money", "travel")
	tag("my boss approved the project", "work")

	t.Run("ranks topics whose messages match", func(t *testing.T) {
		results, err := store.SearchTopicsByContent(ctx, "u1", "hiking", 5)
		require.NoError(t, err)
		require.Len(t, results, 1)

		r := results[0]
		assert.Equal(t, "travel", r.Topic.Name)
		assert.Greater(t, r.Rank, 0.0)
		assert.Equal(t, 2, r.MessageCount)
		assert.False(t, r.LastTagged.IsZero())
	})

	t.Run("no match yields no rows", func(t *testing.T) {
		results, err := store.SearchTopicsByContent(ctx, "u1", "zeppelin", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query yields no rows", func(t *testing.T) {
		results, err := store.SearchTopicsByContent(ctx, "u1", "!!!", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		results, err := store.SearchTopicsByContent(ctx, "u2", "hiking", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _, err := store.UpsertFact(ctx, "u1", "job", "engineer")
	require.NoError(t, err)

	facts, err := store.GetAllFacts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 1)

	// The second upsert must drop the cached read so the next pull sees it.
	_, _, err = store.UpsertFact(ctx, "u1", "pets", "has a dog")
	require.NoError(t, err)

	facts, err = store.GetAllFacts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}
