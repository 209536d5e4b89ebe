package memory

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/freya-ai/freya/pkg/model"
)

// Recency decay constants: a topic tagged today earns the full 0.5 bonus,
// decaying by 0.05 per day to zero at day 10. Preserved verbatim; prompt
// phrasing downstream was tuned against this curve.
const (
	recencyStartBonus  = 0.5
	recencyDailyDecay  = 0.05
	frequencyCeiling   = 0.5
	fullKeywordBonus   = 1.0
	perTermKeywordHalf = 0.5
)

// TopicScorer ranks an owner's topics against a query. The primary path
// builds on the store's full-text rank; when that yields nothing the scorer
// falls back to matching topic names alone.
type TopicScorer struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewTopicScorer(logger *log.Logger, store Store) *TopicScorer {
	return &TopicScorer{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the scorer's clock for deterministic recency tests.
func (s *TopicScorer) WithClock(now func() time.Time) *TopicScorer {
	s.now = now
	return s
}

// ScoreTopics returns up to limit topics sorted by relevance descending.
// Storage failures are treated as zero rows; the method never errors.
func (s *TopicScorer) ScoreTopics(ctx context.Context, ownerID, query string, limit int) []Scored[model.Topic] {
	results, err := s.store.SearchTopicsByContent(ctx, ownerID, query, limit)
	if err != nil {
		s.logger.Warn("topic search unavailable, using name fallback", "owner", ownerID, "error", err)
		results = nil
	}
	if len(results) == 0 {
		return s.scoreByName(ctx, ownerID, query, limit)
	}

	maxCount := 0
	for _, r := range results {
		if r.MessageCount > maxCount {
			maxCount = r.MessageCount
		}
	}

	scored := make([]Scored[model.Topic], 0, len(results))
	for _, r := range results {
		score := r.Rank
		if maxCount > 0 {
			score += frequencyCeiling * float64(r.MessageCount) / float64(maxCount)
		}
		score += s.recencyFactor(r.LastTagged)
		score += keywordFactor(query, r.Topic.Name)
		scored = append(scored, Scored[model.Topic]{Item: r.Topic, Score: score})
	}
	return TopK(scored, limit)
}

// scoreByName is the fallback path: no message content, just containment
// between the cleaned query and each topic name.
func (s *TopicScorer) scoreByName(ctx context.Context, ownerID, query string, limit int) []Scored[model.Topic] {
	topics, err := s.store.GetAllTopics(ctx, ownerID)
	if err != nil {
		s.logger.Warn("topic listing failed, no topic memories", "owner", ownerID, "error", err)
		return nil
	}

	var scored []Scored[model.Topic]
	for _, topic := range topics {
		if score := keywordFactor(query, topic.Name); score > 0 {
			scored = append(scored, Scored[model.Topic]{Item: topic, Score: score})
		}
	}
	return TopK(scored, limit)
}

func (s *TopicScorer) recencyFactor(lastTagged time.Time) float64 {
	if lastTagged.IsZero() {
		return 0
	}
	days := int(s.now().Sub(lastTagged).Hours() / 24)
	if days < 0 {
		days = 0
	}
	factor := recencyStartBonus - recencyDailyDecay*float64(days)
	if factor < 0 {
		return 0
	}
	return factor
}

// keywordFactor scores direct matches between the cleaned query and a topic
// name: full containment either way earns 1.0, plus 0.5 per query term found
// inside the name. Applied once per topic.
func keywordFactor(query, topicName string) float64 {
	name := strings.ToLower(topicName)
	cleanQuery := cleanText(query)
	if name == "" || cleanQuery == "" {
		return 0
	}

	factor := 0.0
	if strings.Contains(cleanQuery, name) || strings.Contains(name, cleanQuery) {
		factor += fullKeywordBonus
	}
	for _, term := range strings.Fields(cleanQuery) {
		if strings.Contains(name, term) {
			factor += perTermKeywordHalf
		}
	}
	return factor
}
