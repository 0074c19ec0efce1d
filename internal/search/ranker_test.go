package search

import (
	"reflect"
	"testing"
)

func TestRankOrdersByScoreThenDocID(t *testing.T) {
	results := []Result{
		{DocID: 3, Score: 0.5},
		{DocID: 1, Score: 1.6},
		{DocID: 7, Score: 1.5},
		{DocID: 0, Score: 1.5},
	}
	Rank(results)

	var order []uint32
	for _, r := range results {
		order = append(order, r.DocID)
	}
	want := []uint32{1, 0, 7, 3}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRankFloatNoiseDoesNotBreakTies(t *testing.T) {
	// Equal up to rounding, so DocID decides regardless of input order.
	a := 0.1 + 0.2
	b := 0.3
	if a == b {
		t.Skip("platform evaluated 0.1+0.2 exactly")
	}

	results := []Result{
		{DocID: 9, Score: a},
		{DocID: 2, Score: b},
	}
	Rank(results)
	if results[0].DocID != 2 {
		t.Errorf("first DocID = %d, want 2 (lower DocID wins a rounded tie)", results[0].DocID)
	}

	// Same pair fed in the opposite order lands the same way.
	results = []Result{
		{DocID: 2, Score: b},
		{DocID: 9, Score: a},
	}
	Rank(results)
	if results[0].DocID != 2 {
		t.Errorf("first DocID = %d after reordering input, want 2", results[0].DocID)
	}
}

func TestRankEmpty(t *testing.T) {
	Rank(nil)
	Rank([]Result{})
}
