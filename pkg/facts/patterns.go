package facts

import "regexp"

// categoryPatterns map fact categories to the utterance patterns that yield
// them. Some patterns capture two values (e.g. role and company); every
// non-empty capture becomes a candidate fact.
var categoryPatterns = []struct {
	category string
	patterns []*regexp.Regexp
}{
	{"job", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I|my)\s+work\s+at\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:my)\s+job\s+(?:is\s+)?at\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I'?m?\s+)?working\s+at\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I|my)\s+work\s+at\s+([^,.]+?)\s+(?:and|where|&)\s+(?:I\s+)?(?:work\s+(?:with|on|in)|do)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I'?m?\s+)?working\s+at\s+([^,.]+?)\s+(?:and|where|&)\s+(?:I\s+)?(?:work\s+(?:with|on|in)|do)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I\s+am|I'm)\s+(?:an?\s+)?([^,.]+?)\s+at\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I|me)\s+work\s+as\s+(?:an?\s+)?([^,.]+?)\s+(?:at|for)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I|my)\s+work\s+as\s+(?:an?\s+)?([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I\s+am|I'm)\s+(?:an?\s+)?([^,.]+?)\s+(?:by\s+profession|by\s+trade)`),
	}},
	{"location", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I|my)\s+live\s+in\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I\s+am|I'm)\s+from\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:my)\s+home\s+(?:is\s+)?in\s+([^,.]+)`),
	}},
	{"interests", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I|my)\s+(?:like|love|enjoy)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:my)\s+hobby\s+is\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I'm|I\s+am)\s+interested\s+in\s+([^,.]+)`),
	}},
	{"family", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:my)\s+(?:wife|husband|son|daughter|brother|sister|mom|dad)\s+(?:is|name\s+is)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)([^,.]+)\s+is\s+my\s+(?:wife|husband|son|daughter|brother|sister|mom|dad)`),
		regexp.MustCompile(`(?i)(?:I\s+have\s+a)\s+(?:wife|husband|son|daughter|brother|sister)\s+named\s+([^,.]+)`),
	}},
	{"pets", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:my)\s+(?:dog|cat|pet)\s+(?:is|name\s+is)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)([^,.]+)\s+is\s+my\s+(?:dog|cat|pet)`),
		regexp.MustCompile(`(?i)(?:I\s+have\s+a)\s+(?:dog|cat|pet)\s+named\s+([^,.]+)`),
	}},
	{"preferences", []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I|my)\s+(?:like|love|prefer)\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:my)\s+favorite\s+(?:food|color|movie|book|song)\s+is\s+([^,.]+)`),
		regexp.MustCompile(`(?i)(?:I|my)\s+(?:hate|dislike|can't\s+stand)\s+([^,.]+)`),
	}},
}
