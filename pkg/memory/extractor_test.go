package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopics(t *testing.T) {
	extractor := NewTopicExtractor()

	t.Run("should return empty for empty text", func(t *testing.T) {
		assert.Empty(t, extractor.ExtractTopics("", 3))
	})

	t.Run("should return empty for text with no vocabulary hits", func(t *testing.T) {
		assert.Empty(t, extractor.ExtractTopics("xylophone quartz zephyr", 3))
	})

	t.Run("should return empty for non-positive topN", func(t *testing.T) {
		assert.Empty(t, extractor.ExtractTopics("my job is great", 0))
	})

	t.Run("should rank by keyword frequency", func(t *testing.T) {
		text := "My job at the office is stressful. Work deadlines pile up and my boss schedules meeting after meeting."
		topics := extractor.ExtractTopics(text, 3)

		assert.NotEmpty(t, topics)
		assert.Equal(t, "work", topics[0])
	})

	t.Run("should break score ties alphabetically", func(t *testing.T) {
		// One hit each for education ("school") and work ("job").
		topics := extractor.ExtractTopics("school job", 2)
		assert.Equal(t, []string{"education", "work"}, topics)
	})

	t.Run("should cap results at topN", func(t *testing.T) {
		text := "job doctor mother friend hobby school computer money travel food house movie feel plan"
		topics := extractor.ExtractTopics(text, 3)
		assert.Len(t, topics, 3)
	})

	t.Run("should match whole words only", func(t *testing.T) {
		// "jobless" must not count as a "job" hit.
		assert.Empty(t, extractor.ExtractTopics("jobless", 3))
	})

	t.Run("should be case insensitive", func(t *testing.T) {
		topics := extractor.ExtractTopics("MY JOB AND MY CAREER", 3)
		assert.Equal(t, []string{"work"}, topics)
	})
}

func TestIsAboutTopic(t *testing.T) {
	extractor := NewTopicExtractor()

	t.Run("should detect topic keywords", func(t *testing.T) {
		assert.True(t, extractor.IsAboutTopic("I got a promotion at the company", "work"))
		assert.True(t, extractor.IsAboutTopic("my sister visited", "family"))
	})

	t.Run("should reject unrelated text", func(t *testing.T) {
		assert.False(t, extractor.IsAboutTopic("the weather is nice", "work"))
	})

	t.Run("should reject unknown topic", func(t *testing.T) {
		assert.False(t, extractor.IsAboutTopic("my job is fine", "astrology"))
	})

	t.Run("should reject empty text", func(t *testing.T) {
		assert.False(t, extractor.IsAboutTopic("", "work"))
	})
}
