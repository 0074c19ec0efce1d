package search

import (
	"math"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/index"
)

// Weights are the ranking coefficients: Alpha scales coverage, Beta scales
// proximity, Gamma scales the ordered-pair count.
type Weights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultWeights returns the stock coefficients.
func DefaultWeights() Weights {
	return Weights{Alpha: 1.0, Beta: 1.0, Gamma: 0.1}
}

// Match is the scoring outcome for one (query, document) pair.
type Match struct {
	DocID        index.DocID
	MatchedTerms int
	Coverage     float64
	// AvgPairDistance is defined only when at least two terms matched.
	AvgPairDistance float64
	Proximity       float64
	OrderedPairs    int
	Score           float64
	// RepPos is the earliest witnessing occurrence, used to pick the text
	// line shown in display mode.
	RepPos int
}

// Score computes the ranking score of one candidate document. terms are the
// distinct query terms in query order; postings maps each term to its
// position list in the document (absent or empty when unmatched). The
// function is pure: it depends only on its arguments, never on other
// candidates or enumeration order.
//
// Coverage is the matched fraction of distinct terms. Proximity is
// 1/(1+avgPairDistance) over the minimal pairwise distances of matched
// terms, or zero when fewer than two matched; a single hit earns no
// closeness bonus. Ordered pairs are counted on the same witnessing
// occurrences used for the distances, so the two measures cannot diverge on
// multi-occurrence terms.
func Score(terms []string, postings map[string][]int, w Weights) Match {
	matched := make([]string, 0, len(terms))
	for _, t := range terms {
		if len(postings[t]) > 0 {
			matched = append(matched, t)
		}
	}
	m := Match{
		MatchedTerms: len(matched),
	}
	if len(terms) > 0 {
		m.Coverage = float64(len(matched)) / float64(len(terms))
	}
	if len(matched) == 0 {
		return m
	}
	if len(matched) == 1 {
		m.RepPos = postings[matched[0]][0]
		m.Score = w.Alpha * m.Coverage
		return m
	}

	totalDist := 0
	pairs := 0
	rep := math.MaxInt
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			wit := minDistance(postings[matched[i]], postings[matched[j]])
			totalDist += wit.dist
			pairs++
			if wit.ordered {
				m.OrderedPairs++
			}
			rep = min(rep, wit.first, wit.second)
		}
	}
	m.AvgPairDistance = float64(totalDist) / float64(pairs)
	m.Proximity = 1 / (1 + m.AvgPairDistance)
	m.RepPos = rep
	m.Score = w.Alpha*m.Coverage + w.Beta*m.Proximity + w.Gamma*float64(m.OrderedPairs)
	return m
}

// witness is the occurrence pair realizing the minimal distance between two
// matched terms: first belongs to the earlier query term, second to the
// later one.
type witness struct {
	dist    int
	first   int
	second  int
	ordered bool
}

// minDistance finds the minimal absolute distance between any occurrence of
// the first term and any occurrence of the second, by merging the two sorted
// position lists. Ties on distance resolve deterministically: a witness where
// the first term precedes the second beats one where it does not, then
// earlier positions win.
func minDistance(a, b []int) witness {
	best := witness{dist: math.MaxInt}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		consider(&best, a[i], b[j])
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	for ; i < len(a); i++ {
		consider(&best, a[i], b[len(b)-1])
	}
	for ; j < len(b); j++ {
		consider(&best, a[len(a)-1], b[j])
	}
	return best
}

func consider(best *witness, pa, pb int) {
	cand := witness{
		dist:    abs(pa - pb),
		first:   pa,
		second:  pb,
		ordered: pa < pb,
	}
	if cand.dist < best.dist {
		*best = cand
		return
	}
	if cand.dist > best.dist {
		return
	}
	if cand.ordered != best.ordered {
		if cand.ordered {
			*best = cand
		}
		return
	}
	if cand.first < best.first || (cand.first == best.first && cand.second < best.second) {
		*best = cand
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
