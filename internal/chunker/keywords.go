package chunker

import (
	"sort"
	"strings"
	"unicode"
)

// maxKeywords is the number of keywords attached to a chunk's metadata.
const maxKeywords = 8

// minKeywordLen filters short function words before stopword checks.
const minKeywordLen = 4

// stopwords are common terms that carry no retrieval signal.
var stopwords = map[string]struct{}{
	"shall": {}, "this": {}, "that": {}, "with": {}, "from": {},
	"have": {}, "been": {}, "must": {}, "under": {}, "upon": {},
	"other": {}, "such": {}, "each": {}, "their": {}, "which": {},
	"where": {}, "when": {}, "these": {}, "those": {}, "into": {},
	"article": {}, "clause": {}, "point": {}, "chapter": {},
}

// Keywords extracts the most frequent content terms of a text span,
// ordered by descending frequency then first occurrence. Deterministic for
// identical input.
func Keywords(text string) []string {
	counts := make(map[string]int)
	first := make(map[string]int)

	pos := 0
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		pos++
		if len([]rune(field)) < minKeywordLen {
			continue
		}
		if _, ok := stopwords[field]; ok {
			continue
		}
		if _, seen := counts[field]; !seen {
			first[field] = pos
		}
		counts[field]++
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return first[terms[i]] < first[terms[j]]
	})

	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}
