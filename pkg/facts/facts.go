// Package facts extracts user facts from chat messages and stores them.
package facts

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/freya-ai/freya/pkg/db"
	"github.com/freya-ai/freya/pkg/model"
)

// Candidate is one extracted fact before storage.
type Candidate struct {
	Category string
	Value    string
}

// Extract pulls fact candidates out of a message. Values are trimmed and cut
// at the first "and" so compound statements yield single facts.
func Extract(message string) []Candidate {
	if message == "" {
		return nil
	}

	var candidates []Candidate
	for _, entry := range categoryPatterns {
		for _, pattern := range entry.patterns {
			for _, match := range pattern.FindAllStringSubmatch(message, -1) {
				for _, value := range match[1:] {
					cleaned := strings.TrimSpace(value)
					if i := strings.Index(cleaned, " and "); i >= 0 {
						cleaned = strings.TrimSpace(cleaned[:i])
					}
					if cleaned != "" {
						candidates = append(candidates, Candidate{Category: entry.category, Value: cleaned})
					}
				}
			}
		}
	}
	return candidates
}

// Service extracts facts and persists the new ones.
type Service struct {
	logger *log.Logger
	store  *db.Store
}

func NewService(logger *log.Logger, store *db.Store) *Service {
	return &Service{logger: logger, store: store}
}

// ExtractAndStore stores every fact candidate found in a message and returns
// the newly created ones. Duplicates (same category and normalized value)
// are skipped by the store.
func (s *Service) ExtractAndStore(ctx context.Context, ownerID, message string) ([]model.Fact, error) {
	var stored []model.Fact
	for _, candidate := range Extract(message) {
		fact, created, err := s.store.UpsertFact(ctx, ownerID, candidate.Category, candidate.Value)
		if err != nil {
			return stored, err
		}
		if created {
			s.logger.Debug("stored new fact", "owner", ownerID, "category", fact.Category, "value", fact.Value)
			stored = append(stored, fact)
		}
	}
	return stored, nil
}
