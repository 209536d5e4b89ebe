package memory

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/freya-ai/freya/pkg/model"
)

// Assembly limits, matching the contract the chat layer was tuned against.
const (
	factLimit          = 5
	recentLimit        = 10
	recentMaxAgeDays   = 30
	topicLimit         = 3
	topicMessageLimit  = 3
	queryTopicLimit    = 5
	rescoreBase        = 50
	rescoreTermBonus   = 10
	rescoreBigramBonus = 15
	rescoreMinKept     = 3
	rescoreCap         = 5
)

// Service assembles the memory context for one request: facts, recent
// messages, and topic memories, scored and rendered for prompt injection.
type Service struct {
	logger     *log.Logger
	store      Store
	extractor  *TopicExtractor
	classifier *MemoryQueryClassifier
	topics     *TopicScorer
	parallel   bool
}

func NewService(logger *log.Logger, store Store) *Service {
	extractor := NewTopicExtractor()
	return &Service{
		logger:     logger,
		store:      store,
		extractor:  extractor,
		classifier: NewMemoryQueryClassifier(extractor),
		topics:     NewTopicScorer(logger, store),
	}
}

// WithParallelFetch fans the three independent section fetches out to
// goroutines. Results are identical to the sequential path; this is purely a
// latency lever.
func (s *Service) WithParallelFetch() *Service {
	s.parallel = true
	return s
}

// WithClock overrides the clock used for recency decay.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.topics.WithClock(now)
	return s
}

// Extractor exposes the shared topic extractor so the tagging pipeline uses
// the same vocabulary the retrieval side scores against.
func (s *Service) Extractor() *TopicExtractor {
	return s.extractor
}

// Assemble builds the full memory context for a query. Individual fetch
// failures degrade to empty sections; the returned context is always a valid
// shape with at least the formatted header.
func (s *Service) Assemble(ctx context.Context, ownerID, query string) Context {
	var (
		facts     []FactView
		recent    []MemoryItem
		topicMems []TopicMemory
	)

	if s.parallel {
		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); facts = s.fetchFacts(ctx, ownerID, query) }()
		go func() { defer wg.Done(); recent = s.fetchRecent(ctx, ownerID) }()
		go func() { defer wg.Done(); topicMems = s.fetchTopicMemories(ctx, ownerID, query) }()
		wg.Wait()
	} else {
		facts = s.fetchFacts(ctx, ownerID, query)
		recent = s.fetchRecent(ctx, ownerID)
		topicMems = s.fetchTopicMemories(ctx, ownerID, query)
	}

	mc := Context{
		UserFacts:      facts,
		RecentMemories: recent,
		TopicMemories:  topicMems,
		IsMemoryQuery:  s.classifier.IsMemoryQuery(query),
	}

	if mc.IsMemoryQuery {
		s.reprioritize(&mc, query)
	}

	mc.FormattedContext = FormatContext(mc)
	return mc
}

func (s *Service) fetchFacts(ctx context.Context, ownerID, query string) []FactView {
	facts, err := s.store.GetAllFacts(ctx, ownerID)
	if err != nil {
		s.logger.Warn("fact fetch failed, continuing without facts", "owner", ownerID, "error", err)
		return nil
	}
	return FactViews(ScoreFacts(facts, query, factLimit))
}

func (s *Service) fetchRecent(ctx context.Context, ownerID string) []MemoryItem {
	messages, err := s.store.GetRecentMessages(ctx, ownerID, recentLimit, recentMaxAgeDays)
	if err != nil {
		s.logger.Warn("recent message fetch failed, continuing without history", "owner", ownerID, "error", err)
		return nil
	}
	return messageItems(messages)
}

func (s *Service) fetchTopicMemories(ctx context.Context, ownerID, query string) []TopicMemory {
	scored := s.topics.ScoreTopics(ctx, ownerID, query, topicLimit)

	memories := make([]TopicMemory, 0, len(scored))
	for _, st := range scored {
		messages, err := s.store.GetMessagesForOwnerTopic(ctx, ownerID, st.Item.ID, topicMessageLimit)
		if err != nil {
			s.logger.Warn("topic message fetch failed", "owner", ownerID, "topic", st.Item.Name, "error", err)
			messages = nil
		}
		memories = append(memories, TopicMemory{
			Topic: TopicView{
				ID:        st.Item.ID,
				Name:      st.Item.Name,
				Relevance: clampScore(int(math.Round(100 * st.Score))),
			},
			Messages: messageItems(messages),
		})
	}
	return memories
}

func messageItems(messages []model.Message) []MemoryItem {
	items := make([]MemoryItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, MemoryItem{
			Content:   msg.Content,
			UserID:    msg.OwnerID,
			Timestamp: msg.CreatedAt,
		})
	}
	return items
}

// reprioritize re-scores every section once the query is known to be a
// memory query, and attaches the intent label and topics of interest.
func (s *Service) reprioritize(mc *Context, query string) {
	queryTopics := s.classifier.QueryTopics(query, queryTopicLimit)
	mc.MemoryQueryTopics = queryTopics
	mc.MemoryQueryType = s.classifier.Classify(query)

	s.rescoreFacts(mc, queryTopics)
	s.rescoreRecent(mc, query)
	s.rescoreTopics(mc, queryTopics)
}

func (s *Service) rescoreFacts(mc *Context, queryTopics []string) {
	for i := range mc.UserFacts {
		fact := &mc.UserFacts[i]
		value := strings.ToLower(fact.Value)

		categoryHit, valueHit := false, false
		for _, topic := range queryTopics {
			if strings.EqualFold(fact.Type, topic) {
				categoryHit = true
			}
			if strings.Contains(value, strings.ToLower(topic)) {
				valueHit = true
			}
		}
		if categoryHit {
			fact.Confidence += 30
		}
		if valueHit {
			fact.Confidence += 20
		}
		fact.Confidence = clampScore(fact.Confidence)
	}

	sortStableByDesc(mc.UserFacts, func(f FactView) int { return f.Confidence })
}

// rescoreRecent scores the already-fetched recent messages against the query
// text itself: base 50, +10 per long query term found in the content, +15 per
// adjacent term bigram found verbatim.
func (s *Service) rescoreRecent(mc *Context, query string) {
	if len(mc.RecentMemories) == 0 {
		return
	}

	terms := strings.Fields(cleanText(query))
	bigrams := make([]string, 0, len(terms))
	for i := 0; i+1 < len(terms); i++ {
		bigrams = append(bigrams, terms[i]+" "+terms[i+1])
	}

	scores := make([]int, len(mc.RecentMemories))
	for i, item := range mc.RecentMemories {
		content := strings.ToLower(item.Content)
		score := rescoreBase
		for _, term := range terms {
			if len(term) > 3 && strings.Contains(content, term) {
				score += rescoreTermBonus
			}
		}
		for _, bigram := range bigrams {
			if strings.Contains(content, bigram) {
				score += rescoreBigramBonus
			}
		}
		scores[i] = score
	}

	type indexed struct {
		item  MemoryItem
		score int
	}
	kept := make([]indexed, 0, len(mc.RecentMemories))
	taken := make([]bool, len(mc.RecentMemories))
	for i, item := range mc.RecentMemories {
		if scores[i] > rescoreBase {
			kept = append(kept, indexed{item: item, score: scores[i]})
			taken[i] = true
		}
	}

	// Too few matched: backfill from the original recency order at the
	// default relevance so the context never collapses to nothing.
	if len(kept) < rescoreMinKept {
		for i, item := range mc.RecentMemories {
			if len(kept) >= rescoreMinKept {
				break
			}
			if !taken[i] {
				kept = append(kept, indexed{item: item, score: rescoreBase})
			}
		}
	}

	sortStableByDesc(kept, func(e indexed) int { return e.score })
	if len(kept) > rescoreCap {
		kept = kept[:rescoreCap]
	}

	rescored := make([]MemoryItem, 0, len(kept))
	for _, e := range kept {
		item := e.item
		relevance := clampScore(e.score)
		item.Relevance = &relevance
		rescored = append(rescored, item)
	}
	mc.RecentMemories = rescored
}

func (s *Service) rescoreTopics(mc *Context, queryTopics []string) {
	for i := range mc.TopicMemories {
		topic := &mc.TopicMemories[i].Topic
		name := strings.ToLower(topic.Name)

		exact, partial := false, false
		for _, qt := range queryTopics {
			lowered := strings.ToLower(qt)
			switch {
			case name == lowered:
				exact = true
			case strings.Contains(name, lowered) || strings.Contains(lowered, name):
				partial = true
			}
		}
		switch {
		case exact:
			topic.Relevance += 30
		case partial:
			topic.Relevance += 15
		}
		topic.Relevance = clampScore(topic.Relevance)
	}

	sortStableByDesc(mc.TopicMemories, func(tm TopicMemory) int { return tm.Topic.Relevance })
}
