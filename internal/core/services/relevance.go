package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/logger"
)

// DefaultMinMatches is the number of passages that must mention a question
// keyword before the gate passes.
const DefaultMinMatches = 2

var keywordPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)

// questionStopwords are removed from the question's keyword set only.
var questionStopwords = map[string]struct{}{
	"what": {}, "is": {}, "are": {}, "how": {}, "does": {}, "do": {},
	"the": {}, "of": {}, "to": {}, "and": {}, "in": {}, "for": {},
}

// RelevanceDecision explains one gate evaluation.
type RelevanceDecision struct {
	// Keywords is the question's keyword set in first-seen order.
	Keywords []string

	// Matches is the number of passages containing at least one keyword.
	Matches int

	// Passed is true when the evidence may be used for an answer.
	Passed bool
}

// ExtractKeywords returns the lowercase alphabetic tokens of at least four
// letters in question, without stopwords or duplicates.
func ExtractKeywords(question string) []string {
	tokens := keywordPattern.FindAllString(strings.ToLower(question), -1)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := questionStopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// EvaluateRelevance counts the passages whose lowercased text contains any
// question keyword as a substring. The gate passes iff there is at least one
// passage, at least one keyword and minMatches or more matching passages.
// A minMatches below 1 is treated as DefaultMinMatches.
func EvaluateRelevance(question string, passages []domain.Passage, minMatches int) RelevanceDecision {
	if minMatches < 1 {
		minMatches = DefaultMinMatches
	}

	decision := RelevanceDecision{Keywords: ExtractKeywords(question)}
	if len(passages) == 0 || len(decision.Keywords) == 0 {
		logger.Debug("Relevance gate closed: %d passages, keywords %v", len(passages), decision.Keywords)
		return decision
	}

	for _, p := range passages {
		if containsAny(strings.ToLower(p.Content), decision.Keywords) {
			decision.Matches++
		}
	}
	decision.Passed = decision.Matches >= minMatches

	logger.Debug("Relevance gate: keywords %v, %d/%d passages match, need %d, passed=%v",
		decision.Keywords, decision.Matches, len(passages), minMatches, decision.Passed)
	return decision
}

// IsRelevant reports whether passages are about the question's subject.
func IsRelevant(question string, passages []domain.Passage, minMatches int) bool {
	return EvaluateRelevance(question, passages, minMatches).Passed
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
