package memory

import (
	"math"
	"regexp"
	"strings"

	"github.com/freya-ai/freya/pkg/model"
)

// factCategoryWeights are the hand-tuned priority multipliers for known fact
// categories. Unknown categories fall back to 1.0. The exact values are a
// behavior contract; downstream prompts were tuned against them.
var factCategoryWeights = map[string]float64{
	"job":         1.5,
	"location":    1.3,
	"family":      1.4,
	"interests":   1.2,
	"preferences": 1.1,
	"pets":        1.0,
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// cleanText lowercases and strips punctuation so scoring compares bare terms.
func cleanText(text string) string {
	return strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(text), ""))
}

// ScoreFacts ranks an owner's facts against a query. Facts with no textual
// relation to the query are dropped; the rest come back sorted by score
// descending, capped at limit.
func ScoreFacts(facts []model.Fact, query string, limit int) []Scored[model.Fact] {
	cleanQuery := cleanText(query)
	queryTerms := strings.Fields(cleanQuery)
	if len(facts) == 0 || len(queryTerms) == 0 {
		return nil
	}

	askedAboutKids := false
	for _, term := range queryTerms {
		if term == "kids" || term == "children" {
			askedAboutKids = true
			break
		}
	}

	scored := make([]Scored[model.Fact], 0, len(facts))
	for _, fact := range facts {
		cleanValue := cleanText(fact.Value)
		valueTerms := strings.Fields(cleanValue)

		score := 0.0
		if cleanValue != "" && (strings.Contains(cleanValue, cleanQuery) || strings.Contains(cleanQuery, cleanValue)) {
			score += 3.0
		}

		for _, term := range queryTerms {
			if containsTerm(valueTerms, term) {
				score += 1.0
				continue
			}
			score += bestPartialCredit(term, valueTerms)
		}

		if askedAboutKids && fact.Category == "family" {
			score += 2.0
		}

		score /= float64(len(queryTerms))
		score *= categoryWeight(fact.Category)

		if score > 0 {
			scored = append(scored, Scored[model.Fact]{Item: fact, Score: score})
		}
	}

	return TopK(scored, limit)
}

func categoryWeight(category string) float64 {
	if w, ok := factCategoryWeights[category]; ok {
		return w
	}
	return 1.0
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// bestPartialCredit gives fractional credit when a query term overlaps a fact
// term without matching it whole. Only the strongest overlap counts.
func bestPartialCredit(term string, valueTerms []string) float64 {
	best := 0.0
	for _, valueTerm := range valueTerms {
		if !strings.Contains(valueTerm, term) && !strings.Contains(term, valueTerm) {
			continue
		}
		overlap := len(term)
		maxLen := len(valueTerm)
		if overlap > maxLen {
			overlap, maxLen = maxLen, overlap
		}
		if maxLen == 0 {
			continue
		}
		if credit := 0.5 * float64(overlap) / float64(maxLen); credit > best {
			best = credit
		}
	}
	return best
}

// FactViews converts scored facts to context entries with confidence
// normalized to 0-100 against the best score. The top fact always lands at
// 100 when any score is positive.
func FactViews(scored []Scored[model.Fact]) []FactView {
	if len(scored) == 0 {
		return nil
	}
	maxScore := scored[0].Score
	for _, s := range scored {
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}

	views := make([]FactView, 0, len(scored))
	for _, s := range scored {
		confidence := 0
		if maxScore > 0 {
			confidence = clampScore(int(math.Round(100 * s.Score / maxScore)))
		}
		views = append(views, FactView{
			Type:       s.Item.Category,
			Value:      s.Item.Value,
			Confidence: confidence,
		})
	}
	return views
}
