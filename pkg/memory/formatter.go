package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ContextHeader opens every formatted memory context. The headings and bullet
// formats below are load-bearing: downstream prompt engineering depends on
// them staying stable.
const ContextHeader = "### Memory Context ###\n\n"

const (
	dateLayout = "Jan 02, 2006"
	timeLayout = "03:04 PM"
)

// FormatContext renders the assembled context into the prompt-ready text
// block, branching its layout on the memory-query intent. It never fails;
// missing fields degrade to omission.
func FormatContext(mc Context) string {
	var b strings.Builder
	b.WriteString(ContextHeader)

	if len(mc.UserFacts) > 0 {
		writeUserFacts(&b, mc.UserFacts)
	}

	if !mc.IsMemoryQuery {
		writeDefaultSections(&b, mc)
		return b.String()
	}

	switch mc.MemoryQueryType {
	case QueryRecallVerification, QueryContentRecall, QueryFactChecking:
		writeTopicMemoriesForRecall(&b, mc.TopicMemories)
		writeRecentForRecall(&b, mc.RecentMemories)
	case QueryTemporalRecall, QueryPreviousConversation:
		writeTimeline(&b, mc.RecentMemories, mc.TopicMemories)
	case QueryExistenceVerification:
		writeExistenceVerification(&b, mc.TopicMemories, mc.RecentMemories, mc.MemoryQueryTopics)
	case QueryKnowledge:
		writeKnowledge(&b, mc.UserFacts, mc.TopicMemories, mc.MemoryQueryTopics)
	default:
		writeDefaultSections(&b, mc)
	}
	return b.String()
}

func writeUserFacts(b *strings.Builder, facts []FactView) {
	b.WriteString("## User Facts\n")

	ordered := make([]FactView, len(facts))
	copy(ordered, facts)
	sortStableByDesc(ordered, func(f FactView) int { return f.Confidence })

	for _, fact := range ordered {
		stars := strings.Repeat("★", 1+min(4, fact.Confidence/20))
		fmt.Fprintf(b, "- %s: %s %s\n", capitalize(fact.Type), fact.Value, stars)
	}
	b.WriteString("\n")
}

func writeTopicMemoriesForRecall(b *strings.Builder, topicMemories []TopicMemory) {
	if len(topicMemories) == 0 {
		return
	}
	b.WriteString("## Topic-Related Memories\n")

	ordered := make([]TopicMemory, len(topicMemories))
	copy(ordered, topicMemories)
	sortStableByDesc(ordered, func(tm TopicMemory) int { return tm.Topic.Relevance })

	for _, tm := range ordered {
		if tm.Topic.Relevance < 30 {
			continue
		}
		fmt.Fprintf(b, "### %s\n", tm.Topic.Name)
		for _, msg := range tm.Messages {
			fmt.Fprintf(b, "- %s\n", msg.Content)
		}
		b.WriteString("\n")
	}
}

func writeRecentForRecall(b *strings.Builder, recent []MemoryItem) {
	if len(recent) == 0 {
		return
	}
	b.WriteString("## Recent Conversation History\n")

	ordered := make([]MemoryItem, len(recent))
	copy(ordered, recent)
	// Rescored lists sort by relevance; otherwise trust the recency order.
	if ordered[0].Relevance != nil {
		sortStableByDesc(ordered, func(m MemoryItem) int {
			if m.Relevance == nil {
				return 0
			}
			return *m.Relevance
		})
	}

	for _, item := range ordered[:min(5, len(ordered))] {
		if item.Relevance != nil && *item.Relevance < 30 {
			continue
		}
		fmt.Fprintf(b, "- %s\n", item.Content)
	}
	b.WriteString("\n")
}

func writeTimeline(b *strings.Builder, recent []MemoryItem, topicMemories []TopicMemory) {
	if len(recent) == 0 && len(topicMemories) == 0 {
		return
	}
	b.WriteString("## Conversation Timeline\n")

	type entry struct {
		content   string
		timestamp time.Time
		topic     string
	}
	var entries []entry
	for _, item := range recent {
		if !item.Timestamp.IsZero() {
			entries = append(entries, entry{content: item.Content, timestamp: item.Timestamp})
		}
	}
	for _, tm := range topicMemories {
		for _, msg := range tm.Messages {
			if !msg.Timestamp.IsZero() {
				entries = append(entries, entry{content: msg.Content, timestamp: msg.Timestamp, topic: tm.Topic.Name})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].timestamp.After(entries[j].timestamp)
	})

	for _, e := range entries {
		topicSuffix := ""
		if e.topic != "" {
			topicSuffix = fmt.Sprintf(" (Topic: %s)", e.topic)
		}
		fmt.Fprintf(b, "- %s%s: %s\n", timestampString(e.timestamp), topicSuffix, e.content)
	}
	b.WriteString("\n")
}

func writeExistenceVerification(b *strings.Builder, topicMemories []TopicMemory, recent []MemoryItem, queryTopics []string) {
	b.WriteString("## Memory Verification\n")
	if len(topicMemories) == 0 && len(recent) == 0 {
		b.WriteString("No relevant memories found about this topic.\n\n")
		return
	}

	hasRelevant := false
	for _, tm := range topicMemories {
		if tm.Topic.Relevance >= 50 || topicMatchesAny(tm.Topic.Name, queryTopics) {
			hasRelevant = true
			break
		}
	}
	if !hasRelevant {
		for _, item := range recent {
			if item.Relevance != nil && *item.Relevance >= 50 {
				hasRelevant = true
				break
			}
		}
	}

	if !hasRelevant {
		b.WriteString("No, we haven't discussed this topic in detail before.\n\n")
		return
	}

	b.WriteString("Yes, we have discussed this topic before. Here are the relevant memories:\n\n")
	writeTopicMemoriesForRecall(b, topicMemories)
	writeRecentForRecall(b, recent)
}

func writeKnowledge(b *strings.Builder, facts []FactView, topicMemories []TopicMemory, queryTopics []string) {
	b.WriteString("## Knowledge About User\n")

	var relevantFacts []FactView
	for _, fact := range facts {
		factType := strings.ToLower(fact.Type)
		factValue := strings.ToLower(fact.Value)
		for _, qt := range queryTopics {
			lowered := strings.ToLower(qt)
			if strings.Contains(factType, lowered) || strings.Contains(factValue, lowered) {
				relevantFacts = append(relevantFacts, fact)
				break
			}
		}
	}
	if len(relevantFacts) > 0 {
		b.WriteString("### Known Facts\n")
		for _, fact := range relevantFacts {
			fmt.Fprintf(b, "- %s: %s\n", capitalize(fact.Type), fact.Value)
		}
		b.WriteString("\n")
	}

	var relevantTopics []TopicMemory
	for _, tm := range topicMemories {
		if tm.Topic.Relevance >= 30 || topicMatchesAny(tm.Topic.Name, queryTopics) {
			relevantTopics = append(relevantTopics, tm)
		}
	}
	if len(relevantTopics) > 0 {
		b.WriteString("### Related Conversations\n")
		for _, tm := range relevantTopics {
			if len(tm.Messages) == 0 {
				continue
			}
			fmt.Fprintf(b, "#### %s\n", tm.Topic.Name)
			for _, msg := range tm.Messages {
				fmt.Fprintf(b, "- %s\n", msg.Content)
			}
			b.WriteString("\n")
		}
	}

	if len(relevantFacts) == 0 && len(relevantTopics) == 0 {
		b.WriteString("I don't have much information about this topic yet.\n\n")
	}
}

func writeDefaultSections(b *strings.Builder, mc Context) {
	if len(mc.TopicMemories) > 0 {
		b.WriteString("## Relevant Topics\n")

		ordered := make([]TopicMemory, len(mc.TopicMemories))
		copy(ordered, mc.TopicMemories)
		sortStableByDesc(ordered, func(tm TopicMemory) int { return tm.Topic.Relevance })

		for _, tm := range ordered[:min(3, len(ordered))] {
			if len(tm.Messages) == 0 {
				continue
			}
			fmt.Fprintf(b, "### %s\n", tm.Topic.Name)
			for _, msg := range tm.Messages[:min(2, len(tm.Messages))] {
				fmt.Fprintf(b, "- %s\n", msg.Content)
			}
			b.WriteString("\n")
		}
	}

	if len(mc.RecentMemories) > 0 {
		b.WriteString("## Recent Conversation\n")
		for _, item := range mc.RecentMemories[:min(3, len(mc.RecentMemories))] {
			fmt.Fprintf(b, "- %s\n", item.Content)
		}
		b.WriteString("\n")
	}
}

func topicMatchesAny(topicName string, queryTopics []string) bool {
	name := strings.ToLower(topicName)
	if name == "" {
		return false
	}
	for _, qt := range queryTopics {
		lowered := strings.ToLower(qt)
		if strings.Contains(name, lowered) || strings.Contains(lowered, name) {
			return true
		}
	}
	return false
}

func timestampString(t time.Time) string {
	if t.IsZero() {
		return "Unknown time"
	}
	return t.Format(dateLayout) + " at " + t.Format(timeLayout)
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
