package services

import "strings"

// minTermLen filters stop-word-like noise: query tokens of two
// characters or fewer never count as terms.
const minTermLen = 3

// queryTerms tokenizes a query on whitespace and keeps the terms long
// enough to be meaningful, lower-cased.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTermLen {
			terms = append(terms, f)
		}
	}
	return terms
}

// keywordBoost is the fraction of query terms that occur anywhere in
// the candidate text, in [0, 1]. Matching is deliberately substring
// based, so a query term "kill" matches "killing". A term occurring
// several times still counts once: presence, not frequency. text must
// already be lower-cased.
func keywordBoost(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
