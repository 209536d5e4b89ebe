// Package db provides the SQLite-backed store for conversations, messages,
// facts, and topics.
//
// 1. The creation method creates the tables if they do not exist.
// 2. Convenience methods implement the storage contract the memory core
//    consumes, plus the CRUD plumbing the API layer needs.
// 3. An optional read-through TTL cache covers the per-owner pulls only;
//    assembled memory contexts are never cached.
package db

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	gocache "github.com/patrickmn/go-cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	started_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_messages_owner_created ON messages(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);

CREATE TABLE IF NOT EXISTS user_facts (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	category TEXT NOT NULL,
	value TEXT NOT NULL,
	normalized_value TEXT NOT NULL,
	UNIQUE (owner_id, category, normalized_value)
);

CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);

CREATE TABLE IF NOT EXISTS message_topics (
	message_id TEXT NOT NULL,
	topic_id TEXT NOT NULL,
	PRIMARY KEY (message_id, topic_id),
	FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE,
	FOREIGN KEY (topic_id) REFERENCES topics(id)
);
`

// The full-text index is created separately so a SQLite build without FTS5
// only loses topic search, not the whole store.
const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
	message_id UNINDEXED,
	owner_id UNINDEXED,
	content
);
`

// CachePolicy controls the read-through cache over per-owner storage pulls.
// TTL is minutes-scale by design: this layer provides best-effort freshness.
type CachePolicy struct {
	Enabled bool
	TTL     time.Duration
}

// DefaultCachePolicy matches the behavior the chat layer was tuned with.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{Enabled: true, TTL: 5 * time.Minute}
}

// Store wraps a SQLite database connection.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
	cache  *gocache.Cache
	hasFTS bool
}

// NewStore opens (or creates) the SQLite database at dbPath. Use ":memory:"
// for tests.
func NewStore(dbPath string, logger *log.Logger, policy CachePolicy) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	store := &Store{db: db, logger: logger}

	if _, err := db.Exec(ftsSchema); err != nil {
		logger.Warn("FTS5 unavailable, topic search will use the name fallback", "error", err)
	} else {
		store.hasFTS = true
	}

	if policy.Enabled {
		store.cache = gocache.New(policy.TTL, 2*policy.TTL)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx.DB instance.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// invalidateOwner drops every cached read for an owner after a write.
func (s *Store) invalidateOwner(ownerID string) {
	if s.cache == nil {
		return
	}
	prefix := ownerID + ":"
	for key := range s.cache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.cache.Delete(key)
		}
	}
}

func (s *Store) cacheGet(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Store) cacheSet(key string, value any) {
	if s.cache != nil {
		s.cache.Set(key, value, gocache.DefaultExpiration)
	}
}
