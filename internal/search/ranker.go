package search

import (
	"math"
	"sort"
)

// Result pairs a candidate document with its scoring outcome.
type Result struct {
	DocID uint32  `json:"doc_id"`
	Score float64 `json:"score"`
	Match Match   `json:"-"`
}

// Rank orders results by score descending with DocID ascending as the
// tie-break, yielding a total deterministic order independent of candidate
// enumeration order. Scores are compared after rounding so floating-point
// noise cannot flip a genuine tie.
func Rank(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		si := roundScore(results[i].Score)
		sj := roundScore(results[j].Score)
		if si != sj {
			return si > sj
		}
		return results[i].DocID < results[j].DocID
	})
}

func roundScore(s float64) float64 {
	return math.Round(s*1e10) / 1e10
}
