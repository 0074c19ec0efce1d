// Package index defines the positional inverted index, the document catalog,
// and the corpus statistics produced by an index build. All three are built
// once, persisted, and treated as read-only afterwards.
package index

import "sort"

// DocID identifies a document within one built index. IDs are assigned as a
// monotonic counter over the lexically sorted corpus file names, which pins
// ranking tie-breaks to a reproducible order.
type DocID uint32

// PositionalIndex maps a term to, per document, the strictly increasing list
// of zero-based token positions at which the term occurs.
type PositionalIndex map[string]map[DocID][]int

// Document holds the catalog entry for one indexed document: its source file
// name, token count, the raw text lines, and a line-start table mapping token
// positions back to lines for display mode.
type Document struct {
	Name       string   `json:"name"`
	TokenCount int      `json:"token_count"`
	Lines      []string `json:"lines"`
	// LineStarts[i] is the position of the first token at or after the start
	// of line i. A line with no tokens shares its start with the next line,
	// giving it an empty position range.
	LineStarts []int `json:"line_starts"`
}

// Catalog is the per-document metadata table; the slice index is the DocID.
type Catalog []Document

// CorpusStats holds the three corpus-level counters computed at build time.
type CorpusStats struct {
	Documents int   `json:"documents"`
	Tokens    int64 `json:"tokens"`
	Terms     int   `json:"terms"`
}

// LineAt returns the text line containing the token at position pos, or
// ("", false) when pos is out of range.
func (d *Document) LineAt(pos int) (string, bool) {
	if pos < 0 || pos >= d.TokenCount || len(d.LineStarts) == 0 {
		return "", false
	}
	// First line whose start exceeds pos; the token lives on the line before.
	i := sort.Search(len(d.LineStarts), func(i int) bool {
		return d.LineStarts[i] > pos
	})
	if i == 0 {
		return "", false
	}
	return d.Lines[i-1], true
}

// Postings returns the position lists of term restricted to each document,
// in the index's canonical map form. A missing term yields nil.
func (pi PositionalIndex) Postings(term string) map[DocID][]int {
	return pi[term]
}

// Terms returns the number of distinct terms in the index.
func (pi PositionalIndex) Terms() int {
	return len(pi)
}
