// Package chat orchestrates one turn of conversation: persist the user
// message, harvest facts and topics from it, assemble the memory context,
// call the completion API with that context injected into the system prompt,
// and persist the reply.
package chat

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/samber/lo"

	"github.com/freya-ai/freya/pkg/ai"
	"github.com/freya-ai/freya/pkg/db"
	"github.com/freya-ai/freya/pkg/facts"
	"github.com/freya-ai/freya/pkg/helpers"
	"github.com/freya-ai/freya/pkg/memory"
	"github.com/freya-ai/freya/pkg/model"
	"github.com/freya-ai/freya/pkg/tagging"
)

const systemPersona = "You are Freya, a warm personal assistant. " +
	"Use the memory context below when it is relevant, and answer naturally without quoting it verbatim."

// historyLimit bounds how much conversation history rides along with each
// completion request; historyFetchLimit bounds the storage pull it is cut
// from.
const (
	historyLimit      = 20
	historyFetchLimit = 200
)

// topicTagCount matches the retrieval side's default so tagging and scoring
// share one vocabulary depth.
const topicTagCount = memory.DefaultTopicCount

// Reply is the result of one chat turn.
type Reply struct {
	ConversationID string         `json:"conversation_id"`
	Message        model.Message  `json:"message"`
	MemoryContext  memory.Context `json:"memory_context"`
}

type Service struct {
	logger      *log.Logger
	store       *db.Store
	memory      *memory.Service
	facts       *facts.Service
	tagging     *tagging.Service
	completions ai.Completion
	model       string
}

func NewService(
	logger *log.Logger,
	store *db.Store,
	memoryService *memory.Service,
	factsService *facts.Service,
	taggingService *tagging.Service,
	completions ai.Completion,
	completionModel string,
) *Service {
	return &Service{
		logger:      logger,
		store:       store,
		memory:      memoryService,
		facts:       factsService,
		tagging:     taggingService,
		completions: completions,
		model:       completionModel,
	}
}

// SendMessage runs one chat turn. An empty conversationID starts a new
// conversation. Memory enrichment failures degrade; only storage of the
// message itself or the completion call can fail the turn.
func (s *Service) SendMessage(ctx context.Context, ownerID, conversationID, content string) (Reply, error) {
	if ownerID == "" {
		return Reply{}, fmt.Errorf("owner id is required")
	}

	if conversationID == "" {
		conv, err := s.store.CreateConversation(ctx, ownerID)
		if err != nil {
			return Reply{}, err
		}
		conversationID = conv.ID
	}

	userMsg, err := s.store.AddMessage(ctx, conversationID, ownerID, model.RoleUser, content)
	if err != nil {
		return Reply{}, err
	}

	if _, err := s.facts.ExtractAndStore(ctx, ownerID, content); err != nil {
		s.logger.Warn("fact extraction failed", "owner", ownerID, "error", err)
	}
	if _, err := s.tagging.TagMessage(ctx, userMsg, topicTagCount); err != nil {
		s.logger.Warn("topic tagging failed", "message", userMsg.ID, "error", err)
	}

	memoryContext := s.memory.Assemble(ctx, ownerID, content)

	history, err := s.store.GetConversationMessages(ctx, conversationID, historyFetchLimit)
	if err != nil {
		s.logger.Warn("history fetch failed, sending current message only", "conversation", conversationID, "error", err)
		history = []model.Message{userMsg}
	}
	history = helpers.SafeLastN(history, historyLimit)

	completion, err := s.completions.Completions(ctx, buildMessages(memoryContext, history), s.model)
	if err != nil {
		return Reply{}, fmt.Errorf("completion call failed: %w", err)
	}

	assistantMsg, err := s.store.AddMessage(ctx, conversationID, ownerID, model.RoleAssistant, completion.Content)
	if err != nil {
		return Reply{}, err
	}
	if _, err := s.tagging.TagMessage(ctx, assistantMsg, topicTagCount); err != nil {
		s.logger.Warn("topic tagging failed", "message", assistantMsg.ID, "error", err)
	}

	return Reply{
		ConversationID: conversationID,
		Message:        assistantMsg,
		MemoryContext:  memoryContext,
	}, nil
}

// MemoryContext assembles the memory context without running a chat turn.
func (s *Service) MemoryContext(ctx context.Context, ownerID, query string) memory.Context {
	return s.memory.Assemble(ctx, ownerID, query)
}

func buildMessages(mc memory.Context, history []model.Message) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPersona + "\n\n" + mc.FormattedContext),
	}
	return append(messages, lo.Map(history, func(msg model.Message, _ int) openai.ChatCompletionMessageParamUnion {
		switch msg.Role {
		case model.RoleAssistant:
			return openai.AssistantMessage(msg.Content)
		case model.RoleSystem:
			return openai.SystemMessage(msg.Content)
		default:
			return openai.UserMessage(msg.Content)
		}
	})...)
}
