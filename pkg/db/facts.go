package db

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/freya-ai/freya/pkg/model"
)

var factNormalizeRe = regexp.MustCompile(`[^\w\s]`)

// normalizeFactValue is the dedup key for fact values: lowercase, punctuation
// stripped, whitespace collapsed.
func normalizeFactValue(value string) string {
	cleaned := factNormalizeRe.ReplaceAllString(strings.ToLower(value), "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// UpsertFact stores a fact, deduplicating on (category, normalized value).
// Re-inserting a known fact is a no-op that returns the existing record.
func (s *Store) UpsertFact(ctx context.Context, ownerID, category, value string) (model.Fact, bool, error) {
	normalized := normalizeFactValue(value)

	var existing factRow
	err := s.db.GetContext(ctx, &existing,
		`SELECT id, owner_id, category, value FROM user_facts WHERE owner_id = ? AND category = ? AND normalized_value = ?`,
		ownerID, category, normalized)
	if err == nil {
		return existing.toModel(), false, nil
	}

	fact := model.Fact{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Category: category,
		Value:    value,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_facts (id, owner_id, category, value, normalized_value) VALUES (?, ?, ?, ?, ?)`,
		fact.ID, fact.OwnerID, fact.Category, fact.Value, normalized)
	if err != nil {
		return model.Fact{}, false, err
	}

	s.invalidateOwner(ownerID)
	return fact, true, nil
}

// GetAllFacts returns every stored fact for an owner.
func (s *Store) GetAllFacts(ctx context.Context, ownerID string) ([]model.Fact, error) {
	key := ownerID + ":facts"
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]model.Fact), nil
	}

	var rows []factRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, owner_id, category, value FROM user_facts WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}

	facts := make([]model.Fact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, r.toModel())
	}
	s.cacheSet(key, facts)
	return facts, nil
}
