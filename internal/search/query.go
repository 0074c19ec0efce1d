// Package search implements query parsing, candidate scoring, ranking, and
// the query read loop over an immutable loaded index.
package search

import (
	"strings"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/tokenizer"
)

// displayPrefix switches a query line into display mode.
const displayPrefix = "> "

// Query is one parsed query line. Terms are distinct and keep the order of
// their first occurrence; that order is significant for the ordered-pair
// score. Terms absent from the vocabulary stay in the slice and simply
// contribute zero matches.
type Query struct {
	Terms       []string
	DisplayMode bool
	Raw         string
}

// ParseQuery tokenizes one raw query line with the index-time normalization
// pipeline. A leading "> " strips off and enables display mode. Duplicate
// terms fold into one, so the coverage denominator counts distinct terms.
func ParseQuery(raw string) Query {
	q := Query{Raw: raw}
	line := raw
	if strings.HasPrefix(line, displayPrefix) {
		q.DisplayMode = true
		line = line[len(displayPrefix):]
	}
	seen := make(map[string]struct{})
	for _, term := range tokenizer.Tokenize(line) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		q.Terms = append(q.Terms, term)
	}
	return q
}

// Empty reports whether the query carries no usable terms.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}
