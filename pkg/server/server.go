// Package server exposes the chat and memory services over HTTP. Thin glue:
// decode, delegate, encode.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/freya-ai/freya/pkg/chat"
	"github.com/freya-ai/freya/pkg/db"
)

type Server struct {
	logger *log.Logger
	store  *db.Store
	chat   *chat.Service
}

func New(logger *log.Logger, store *db.Store, chatService *chat.Service) *Server {
	return &Server{logger: logger, store: store, chat: chatService}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Get("/memory/context", s.handleMemoryContext)
	r.Get("/facts", s.handleListFacts)
	r.Post("/facts", s.handleCreateFact)
	r.Get("/topics", s.handleListTopics)
	r.Get("/conversations", s.handleListConversations)
	r.Get("/conversations/{id}/messages", s.handleConversationMessages)
	r.Delete("/conversations/{id}", s.handleDeleteConversation)

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	OwnerID        string `json:"owner_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" || req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id and message are required")
		return
	}

	reply, err := s.chat.SendMessage(r.Context(), req.OwnerID, req.ConversationID, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed", "owner", req.OwnerID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleMemoryContext(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	query := r.URL.Query().Get("query")

	s.writeJSON(w, http.StatusOK, s.chat.MemoryContext(r.Context(), ownerID, query))
}

func (s *Server) handleListFacts(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	facts, err := s.store.GetAllFacts(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("fact listing failed", "owner", ownerID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}
	s.writeJSON(w, http.StatusOK, facts)
}

type createFactRequest struct {
	OwnerID  string `json:"owner_id"`
	Category string `json:"category"`
	Value    string `json:"value"`
}

func (s *Server) handleCreateFact(w http.ResponseWriter, r *http.Request) {
	var req createFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" || req.Category == "" || req.Value == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id, category, and value are required")
		return
	}

	fact, created, err := s.store.UpsertFact(r.Context(), req.OwnerID, req.Category, req.Value)
	if err != nil {
		s.logger.Error("fact upsert failed", "owner", req.OwnerID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store fact")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, fact)
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	topics, err := s.store.GetAllTopics(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("topic listing failed", "owner", ownerID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}
	s.writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("conversation listing failed", "owner", ownerID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	s.writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	messages, err := s.store.GetConversationMessages(r.Context(), id, 100)
	if err != nil {
		s.logger.Error("message listing failed", "conversation", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteConversation(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("conversation delete failed", "conversation", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
