package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freya-ai/freya/pkg/chat"
	"github.com/freya-ai/freya/pkg/db"
	"github.com/freya-ai/freya/pkg/facts"
	"github.com/freya-ai/freya/pkg/memory"
	"github.com/freya-ai/freya/pkg/model"
	"github.com/freya-ai/freya/pkg/tagging"
)

type stubCompletion struct {
	reply string
}

func (s *stubCompletion) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	return openai.ChatCompletionMessage{Content: s.reply}, nil
}

func newTestHandler(t *testing.T) (http.Handler, *db.Store) {
	t.Helper()
	logger := log.New(io.Discard)

	store, err := db.NewStore(":memory:", logger, db.DefaultCachePolicy())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	memoryService := memory.NewService(logger, store)
	chatService := chat.NewService(
		logger,
		store,
		memoryService,
		facts.NewService(logger, store),
		tagging.NewService(logger, store, memoryService.Extractor()),
		&stubCompletion{reply: "hello from freya"},
		"test-model",
	)
	return New(logger, store, chatService).Handler(), store
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)

	t.Run("runs a chat turn", func(t *testing.T) {
		body := `{"owner_id":"u1","message":"I work at Google."}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var reply chat.Reply
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
		assert.NotEmpty(t, reply.ConversationID)
		assert.Equal(t, "hello from freya", reply.Message.Content)

		userFacts, err := store.GetAllFacts(context.Background(), "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, userFacts)
	})

	t.Run("rejects a missing owner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMemoryContextEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("returns an assembled context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memory/context?owner_id=u1&query=do+you+remember+my+job", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var mc memory.Context
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mc))
		assert.True(t, mc.IsMemoryQuery)
		assert.True(t, strings.HasPrefix(mc.FormattedContext, memory.ContextHeader))
	})

	t.Run("requires owner_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memory/context", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFactEndpoints(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("create then list", func(t *testing.T) {
		body := `{"owner_id":"u1","category":"job","value":"engineer at Google"}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/facts", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/facts", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facts?owner_id=u1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var listed []model.Fact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("rejects incomplete payloads", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/facts", strings.NewReader(`{"owner_id":"u1"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConversationEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "u1")
	require.NoError(t, err)
	_, err = store.AddMessage(ctx, conv.ID, "u1", model.RoleUser, "hello")
	require.NoError(t, err)

	t.Run("list conversations", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversations?owner_id=u1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var listed []model.Conversation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("list messages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversations/"+conv.ID+"/messages", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var listed []model.Message
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/conversations/"+conv.ID, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/conversations/"+conv.ID, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
