package faq

import (
	"strings"
	"unicode"
)

// maxKeywords caps how many tokens feed the search query.
const maxKeywords = 10

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"my": {}, "your": {}, "how": {}, "what": {}, "when": {}, "where": {},
	"do": {}, "can": {}, "to": {}, "in": {}, "on": {}, "at": {}, "for": {},
	"with": {}, "of": {},
}

// ExtractKeywords normalizes a free-text message into the keyword set used
// for retrieval: lowercase, punctuation stripped, whitespace tokenized, short
// tokens and stop words dropped, capped at maxKeywords.
func ExtractKeywords(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, text)

	var keywords []string
	for _, token := range strings.Fields(normalized) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// BuildTsQuery renders the keyword set as a disjunctive to_tsquery input.
func BuildTsQuery(keywords []string) string {
	return strings.Join(keywords, " | ")
}
