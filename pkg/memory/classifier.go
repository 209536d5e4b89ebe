package memory

import (
	"regexp"
	"strings"
)

// Memory query intents.
const (
	QueryRecallVerification    = "recall_verification"
	QueryContentRecall         = "content_recall"
	QueryTemporalRecall        = "temporal_recall"
	QueryExistenceVerification = "existence_verification"
	QueryKnowledge             = "knowledge_query"
	QueryPreviousConversation  = "previous_conversation"
	QueryFactChecking          = "fact_checking"
	QueryGeneralMemory         = "general_memory_query"
)

// memoryQueryPatterns detect utterances asking about past conversation.
// Order matters only for short-circuiting; any hit makes it a memory query.
var memoryQueryPatterns = compileAll(
	`do you remember (when|what|how|where|why|who|if|that|about|our|my|the)`,
	`what did (i|we|you) (say|tell|ask|talk|mention) (about|regarding|concerning)`,
	`(what|when) did (i|we) (discuss|talk about|mention|say)`,
	`have (i|we) (talked|spoken|discussed|mentioned) (about|regarding)`,
	`(tell|remind) me (about|what|when|how|where|why) (i|we|you) (said|mentioned|talked about)`,
	`(recall|remember|recollect) (our|the|that|when|what|how|where|why|who)`,
	`(bring up|reference) (what|when|how|where|why|who|that|our|the)`,
	`what (did|do) you know about my`,
	`what (have|did) (i|we) (say|tell you|mention) about (my|our|the)`,
	`(last time|previously|earlier|before) (we|you|i) (talked|spoke|discussed|mentioned|said)`,
	`(in|during) (our|a) (previous|past|last|earlier|recent) (conversation|discussion|chat)`,
	`(didn't|did) (i|we) (talk|speak|discuss|mention|tell you) (about|that|how|when|where|why)`,
	`am i (right|correct) (that|when i say) (you|we|i)`,
	`what do you know about (my|our|the)`,
	`tell me what you know about (my|our|the)`,
)

var memoryKeywords = []string{
	"remember", "recall", "forget", "memory", "mentioned",
	"told", "said", "talked about", "discussed", "conversation",
}

// intentRule tags an intent with the pattern that claims it. Classification
// takes the first rule that matches.
type intentRule struct {
	intent  string
	pattern *regexp.Regexp
}

var intentRules = []intentRule{
	{QueryRecallVerification, regexp.MustCompile(`do you remember`)},
	{QueryContentRecall, regexp.MustCompile(`what did (i|we|you) (say|tell|ask|talk|mention)`)},
	{QueryTemporalRecall, regexp.MustCompile(`when did (i|we) (discuss|talk about|mention|say)`)},
	{QueryExistenceVerification, regexp.MustCompile(`have (i|we) (talked|spoken|discussed|mentioned)`)},
	{QueryKnowledge, regexp.MustCompile(`what do you know about my`)},
	{QueryPreviousConversation, regexp.MustCompile(`(last time|previously|earlier|before)`)},
	{QueryFactChecking, regexp.MustCompile(`(didn't|did) (i|we) (talk|speak|discuss|mention|tell)`)},
}

// memoryTopicKeywords is the narrower keyword table used when the extractor
// finds no topics in a memory query.
var memoryTopicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"family", []string{
		"family", "parent", "father", "mother", "dad", "mom", "brother", "sister", "sibling",
		"child", "son", "daughter", "grandparent", "grandmother", "grandfather", "aunt", "uncle",
		"cousin", "niece", "nephew", "wife", "husband", "spouse", "partner",
	}},
	{"work", []string{
		"job", "work", "career", "company", "boss", "office", "colleague", "coworker", "project",
		"deadline", "meeting", "interview", "promotion", "salary", "profession", "business",
	}},
	{"health", []string{
		"health", "sick", "illness", "disease", "doctor", "hospital", "symptom", "medicine",
		"pain", "injury", "exercise", "diet", "sleep", "stress", "anxiety", "depression",
	}},
	{"hobbies", []string{
		"hobby", "interest", "game", "sport", "book", "movie", "music", "art", "travel",
		"cooking", "reading", "writing", "painting", "drawing", "photography", "gardening",
	}},
	{"education", []string{
		"school", "college", "university", "degree", "class", "course", "study", "student",
		"teacher", "professor", "education", "learning", "grade", "exam", "test", "assignment",
	}},
	{"location", []string{
		"home", "house", "apartment", "city", "town", "state", "country", "address",
		"neighborhood", "street", "location", "place", "area", "region", "live", "living",
	}},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// MemoryQueryClassifier detects memory queries and labels their intent.
type MemoryQueryClassifier struct {
	extractor *TopicExtractor
}

func NewMemoryQueryClassifier(extractor *TopicExtractor) *MemoryQueryClassifier {
	return &MemoryQueryClassifier{extractor: extractor}
}

// IsMemoryQuery reports whether the text asks about past conversation, by
// pattern match or keyword hit.
func (c *MemoryQueryClassifier) IsMemoryQuery(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, pattern := range memoryQueryPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	for _, keyword := range memoryKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Classify labels a memory query with the first matching intent, falling back
// to the general bucket.
func (c *MemoryQueryClassifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if rule.pattern.MatchString(lower) {
			return rule.intent
		}
	}
	return QueryGeneralMemory
}

// QueryTopics extracts the topics of interest from a memory query. When the
// vocabulary extractor comes up empty it falls back to direct keyword
// matching against the narrower memory-topic table.
func (c *MemoryQueryClassifier) QueryTopics(text string, topN int) []string {
	if topics := c.extractor.ExtractTopics(text, topN); len(topics) > 0 {
		return topics
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, entry := range memoryTopicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, entry.topic)
				break
			}
		}
		if len(matched) >= topN {
			break
		}
	}
	return matched
}
