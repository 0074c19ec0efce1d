package search

import (
	"math"
	"reflect"
	"testing"
)

const scoreTol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= scoreTol
}

func TestScoreOrderBonusSeparatesMirroredDocs(t *testing.T) {
	// Two documents with identical coverage and proximity. Only the one
	// where the terms appear in query order earns the ordered-pair bonus.
	terms := []string{"appl", "banana"}
	w := DefaultWeights()

	doc0 := Score(terms, map[string][]int{"appl": {0, 2}, "banana": {1}}, w)
	if !almostEqual(doc0.Coverage, 1.0) || !almostEqual(doc0.AvgPairDistance, 1.0) || !almostEqual(doc0.Proximity, 0.5) {
		t.Errorf("doc0 coverage/dist/proximity = %v/%v/%v, want 1.0/1.0/0.5",
			doc0.Coverage, doc0.AvgPairDistance, doc0.Proximity)
	}
	if doc0.OrderedPairs != 1 {
		t.Errorf("doc0 OrderedPairs = %d, want 1", doc0.OrderedPairs)
	}
	if !almostEqual(doc0.Score, 1.6) {
		t.Errorf("doc0 Score = %v, want 1.6", doc0.Score)
	}
	if doc0.RepPos != 0 {
		t.Errorf("doc0 RepPos = %d, want 0", doc0.RepPos)
	}

	doc1 := Score(terms, map[string][]int{"appl": {1}, "banana": {0}}, w)
	if doc1.OrderedPairs != 0 {
		t.Errorf("doc1 OrderedPairs = %d, want 0", doc1.OrderedPairs)
	}
	if !almostEqual(doc1.Score, 1.5) {
		t.Errorf("doc1 Score = %v, want 1.5", doc1.Score)
	}
}

func TestScoreSingleTerm(t *testing.T) {
	w := DefaultWeights()

	m := Score([]string{"sun"}, map[string][]int{"sun": {3, 7}}, w)
	if !almostEqual(m.Coverage, 1.0) || !almostEqual(m.Score, 1.0) {
		t.Errorf("coverage/score = %v/%v, want 1.0/1.0", m.Coverage, m.Score)
	}
	if m.Proximity != 0 {
		t.Errorf("Proximity = %v, want 0 for a single matched term", m.Proximity)
	}
	if m.RepPos != 3 {
		t.Errorf("RepPos = %d, want first occurrence 3", m.RepPos)
	}
}

func TestScorePartialCoverage(t *testing.T) {
	w := DefaultWeights()

	// One of two query terms matched: half coverage, no proximity bonus.
	m := Score([]string{"sun", "moon"}, map[string][]int{"sun": {4}}, w)
	if m.MatchedTerms != 1 {
		t.Errorf("MatchedTerms = %d, want 1", m.MatchedTerms)
	}
	if !almostEqual(m.Coverage, 0.5) || !almostEqual(m.Score, 0.5) {
		t.Errorf("coverage/score = %v/%v, want 0.5/0.5", m.Coverage, m.Score)
	}
}

func TestScoreNoMatch(t *testing.T) {
	m := Score([]string{"sun", "moon"}, map[string][]int{}, DefaultWeights())
	if m.MatchedTerms != 0 || m.Score != 0 || m.Coverage != 0 || m.Proximity != 0 {
		t.Errorf("unmatched document scored %+v, want zeros", m)
	}
}

func TestScoreThreeTerms(t *testing.T) {
	w := DefaultWeights()
	postings := map[string][]int{
		"north": {0},
		"wind":  {2},
		"sun":   {3},
	}
	m := Score([]string{"north", "wind", "sun"}, postings, w)

	// Pairwise minimal distances: 2, 3, 1. Average 2, proximity 1/3.
	if !almostEqual(m.AvgPairDistance, 2.0) {
		t.Errorf("AvgPairDistance = %v, want 2.0", m.AvgPairDistance)
	}
	if !almostEqual(m.Proximity, 1.0/3.0) {
		t.Errorf("Proximity = %v, want 1/3", m.Proximity)
	}
	if m.OrderedPairs != 3 {
		t.Errorf("OrderedPairs = %d, want 3", m.OrderedPairs)
	}
	want := 1.0 + 1.0/3.0 + 0.3
	if !almostEqual(m.Score, want) {
		t.Errorf("Score = %v, want %v", m.Score, want)
	}
}

func TestScoreCustomWeights(t *testing.T) {
	w := Weights{Alpha: 2.0, Beta: 0, Gamma: 1.0}
	m := Score([]string{"appl", "banana"}, map[string][]int{"appl": {0, 2}, "banana": {1}}, w)
	if !almostEqual(m.Score, 3.0) {
		t.Errorf("Score = %v, want 3.0 with alpha=2 beta=0 gamma=1", m.Score)
	}
}

func TestScoreIsPure(t *testing.T) {
	terms := []string{"cat", "dog", "bird"}
	postings := map[string][]int{
		"cat":  {1, 5},
		"bird": {2},
	}
	snapshot := map[string][]int{
		"cat":  {1, 5},
		"bird": {2},
	}
	w := DefaultWeights()

	first := Score(terms, postings, w)
	second := Score(terms, postings, w)
	if first != second {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(postings, snapshot) {
		t.Errorf("Score mutated its postings argument: %v", postings)
	}
}

func TestMinDistanceTieBreak(t *testing.T) {
	// Both (5,4) and (5,6) realize distance 1; the ordered witness wins.
	wit := minDistance([]int{5}, []int{4, 6})
	if wit.dist != 1 || !wit.ordered {
		t.Errorf("witness = %+v, want ordered witness at distance 1", wit)
	}
	if wit.first != 5 || wit.second != 6 {
		t.Errorf("witness positions = (%d,%d), want (5,6)", wit.first, wit.second)
	}
}

func TestMinDistanceInterleaved(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []int
		dist    int
		ordered bool
	}{
		{name: "adjacent forward", a: []int{0, 10}, b: []int{11, 20}, dist: 1, ordered: true},
		{name: "adjacent backward", a: []int{5}, b: []int{4}, dist: 1, ordered: false},
		{name: "same position", a: []int{3}, b: []int{3}, dist: 0, ordered: false},
		{name: "far apart", a: []int{0}, b: []int{100}, dist: 100, ordered: true},
		{name: "dense interleave", a: []int{1, 4, 9}, b: []int{2, 6, 8}, dist: 1, ordered: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wit := minDistance(tt.a, tt.b)
			if wit.dist != tt.dist || wit.ordered != tt.ordered {
				t.Errorf("minDistance(%v, %v) = %+v, want dist=%d ordered=%v",
					tt.a, tt.b, wit, tt.dist, tt.ordered)
			}
		})
	}
}

func BenchmarkScore(b *testing.B) {
	postings := map[string][]int{
		"north": make([]int, 0, 256),
		"wind":  make([]int, 0, 256),
		"sun":   make([]int, 0, 256),
	}
	for i := 0; i < 256; i++ {
		postings["north"] = append(postings["north"], i*7)
		postings["wind"] = append(postings["wind"], i*7+3)
		postings["sun"] = append(postings["sun"], i*7+5)
	}
	terms := []string{"north", "wind", "sun"}
	w := DefaultWeights()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Score(terms, postings, w)
	}
}
