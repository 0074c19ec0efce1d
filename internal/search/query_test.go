package search

import (
	"reflect"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		terms   []string
		display bool
	}{
		{name: "plain", raw: "north wind", terms: []string{"north", "wind"}},
		{name: "display prefix", raw: "> north wind", terms: []string{"north", "wind"}, display: true},
		{name: "duplicates fold", raw: "sun sun sky sun", terms: []string{"sun", "sky"}},
		{name: "normalized like the index", raw: "Walking Dogs", terms: []string{"walk", "dog"}},
		{name: "blank", raw: "   ", terms: nil},
		{name: "empty", raw: "", terms: nil},
		{name: "display with no terms", raw: "> ", terms: nil, display: true},
		{name: "angle bracket without space is a token", raw: ">north", terms: []string{"north"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.raw)
			if !reflect.DeepEqual(q.Terms, tt.terms) {
				t.Errorf("Terms = %v, want %v", q.Terms, tt.terms)
			}
			if q.DisplayMode != tt.display {
				t.Errorf("DisplayMode = %v, want %v", q.DisplayMode, tt.display)
			}
			if q.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", q.Raw, tt.raw)
			}
			if q.Empty() != (len(tt.terms) == 0) {
				t.Errorf("Empty() = %v, want %v", q.Empty(), len(tt.terms) == 0)
			}
		})
	}
}
