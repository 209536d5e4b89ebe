package memory

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultTopicCount is how many topics ExtractTopics returns when the caller
// has no stronger opinion.
const DefaultTopicCount = 3

// topicVocabulary maps each of the fixed topic categories to the keyword
// phrases that signal it. Loaded once at init and never mutated.
var topicVocabulary = map[string][]string{
	"work": {
		"job", "work", "career", "company", "boss", "office", "colleague",
		"coworker", "project", "deadline", "meeting", "interview", "promotion",
		"salary", "profession",
	},
	"health": {
		"health", "sick", "illness", "disease", "doctor", "hospital",
		"symptom", "medicine", "pain", "injury", "exercise", "diet", "sleep",
		"stress", "anxiety", "depression",
	},
	"family": {
		"family", "parent", "father", "mother", "dad", "mom", "brother",
		"sister", "sibling", "child", "son", "daughter", "grandparent",
		"grandmother", "grandfather", "aunt", "uncle", "cousin", "niece", "nephew",
	},
	"relationships": {
		"relationship", "friend", "girlfriend", "boyfriend", "partner",
		"spouse", "husband", "wife", "date", "dating", "marriage", "wedding",
		"divorce", "love", "breakup",
	},
	"hobbies": {
		"hobby", "interest", "game", "sport", "book", "movie", "music", "art",
		"travel", "cook", "cooking", "photography", "garden", "gardening",
		"fishing", "hiking", "camping", "painting", "drawing", "craft",
	},
	"education": {
		"school", "college", "university", "class", "course", "degree",
		"study", "student", "professor", "teacher", "exam", "test", "grade",
		"education", "learn", "learning", "homework", "assignment",
	},
	"technology": {
		"technology", "computer", "phone", "laptop", "app", "software",
		"hardware", "internet", "website", "code", "programming", "data",
		"tech", "digital", "device", "gadget",
	},
	"finance": {
		"money", "finance", "financial", "bank", "invest", "investment",
		"save", "savings", "spend", "spending", "budget", "debt", "loan",
		"mortgage", "rent", "tax", "taxes", "income", "expense", "expenses",
	},
	"travel": {
		"travel", "trip", "vacation", "holiday", "flight", "hotel", "city",
		"country", "destination", "tour", "tourist", "passport", "journey",
		"visit", "beach", "mountain", "hiking",
	},
	"food": {
		"food", "eat", "eating", "restaurant", "meal", "breakfast", "lunch",
		"dinner", "snack", "cook", "cooking", "recipe", "ingredient", "dish",
		"taste", "flavor", "cuisine", "diet",
	},
	"housing": {
		"house", "home", "apartment", "flat", "rent", "mortgage", "room",
		"living", "move", "moving", "roommate", "neighbor", "neighborhood",
		"furniture", "decorate", "decoration", "renovation",
	},
	"entertainment": {
		"movie", "film", "tv", "television", "show", "series", "book",
		"novel", "read", "reading", "music", "song", "concert", "game",
		"gaming", "video game", "play", "stream", "streaming",
	},
	"personal": {
		"feel", "feeling", "emotion", "happy", "sad", "angry", "excited",
		"worried", "stress", "stressed", "anxious", "depressed", "lonely",
		"tired", "exhausted", "overwhelmed", "confident", "proud", "guilty", "shame",
	},
	"future": {
		"future", "plan", "planning", "goal", "dream", "aspiration", "hope",
		"change", "decision", "choice", "opportunity", "challenge", "obstacle",
		"problem", "solution",
	},
}

// TopicExtractor maps free text to a ranked list of topic labels by counting
// whole-word keyword hits against the static vocabulary.
type TopicExtractor struct {
	patterns map[string][]*regexp.Regexp
}

func NewTopicExtractor() *TopicExtractor {
	patterns := make(map[string][]*regexp.Regexp, len(topicVocabulary))
	for topic, keywords := range topicVocabulary {
		compiled := make([]*regexp.Regexp, 0, len(keywords))
		for _, keyword := range keywords {
			compiled = append(compiled, regexp.MustCompile(`\b`+regexp.QuoteMeta(keyword)+`\b`))
		}
		patterns[topic] = compiled
	}
	return &TopicExtractor{patterns: patterns}
}

// ExtractTopics returns up to topN topic names ordered by keyword-hit count
// descending, ties broken by topic name ascending. Empty input or no keyword
// hits yield an empty slice.
func (e *TopicExtractor) ExtractTopics(text string, topN int) []string {
	if text == "" || topN <= 0 {
		return nil
	}

	lower := strings.ToLower(text)

	scores := make(map[string]int)
	for topic, patterns := range e.patterns {
		for _, pattern := range patterns {
			if matches := len(pattern.FindAllStringIndex(lower, -1)); matches > 0 {
				scores[topic] += matches
			}
		}
	}
	if len(scores) == 0 {
		return nil
	}

	names := make([]string, 0, len(scores))
	for topic := range scores {
		names = append(names, topic)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > topN {
		names = names[:topN]
	}
	return names
}

// IsAboutTopic reports whether any of the topic's keywords appears as a whole
// word in the text. Unknown topics and empty text are false.
func (e *TopicExtractor) IsAboutTopic(text, topic string) bool {
	patterns, ok := e.patterns[topic]
	if !ok || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, pattern := range patterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}
