package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"simple words", "north wind", []string{"north", "wind"}},
		{"uppercase folds", "North WIND", []string{"north", "wind"}},
		{"punctuation dropped", "wind, sun!", []string{"wind", "sun"}},
		{"possessive stripped", "john's coat", []string{"john", "coat"}},
		{"plural possessive stripped", "dollars' worth", []string{"dollar", "worth"}},
		{"plural possessive on digits", "the 90s' music", []string{"the", "90", "music"}},
		{"stemming", "travelers walking", []string{"travel", "walk"}},
		{"plural stemming", "dollars", []string{"dollar"}},
		{"digits kept", "in 42 days", []string{"in", "42", "day"}},
		{"thousands separator removed", "1,000,000 coins", []string{"1000000", "coin"}},
		{"abbreviation collapsed", "u.s. policy", []string{"us", "polici"}},
		{"hyphen split", "state-of-the-art design", []string{"state", "of", "the", "art", "design"}},
		{"short hyphen prefix kept whole", "x-ray scan", []string{"x-ray", "scan"}},
		{"only symbols", "!@# $%^", nil},
		{"trailing period trimmed", "the end.", []string{"the", "end"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// The same pipeline runs at index and query time; equal input must always
// yield equal output or vocabulary lookups silently miss.
func TestTokenizeDeterministic(t *testing.T) {
	input := "The North Wind and the Sun were disputing which was the stronger, when a traveler came along wrapped in a warm cloak."
	first := Tokenize(input)
	for i := 0; i < 10; i++ {
		if got := Tokenize(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
	if len(first) == 0 {
		t.Fatal("expected tokens from non-empty input")
	}
}

func TestTokenizePositionStability(t *testing.T) {
	// Token i of the sequence is position i downstream; a prefix of the
	// input must tokenize to a prefix of the output for stable texts.
	full := Tokenize("north wind sun sky")
	prefix := Tokenize("north wind")
	if len(full) < len(prefix) {
		t.Fatalf("full sequence shorter than prefix: %v vs %v", full, prefix)
	}
	if !reflect.DeepEqual(full[:len(prefix)], prefix) {
		t.Errorf("prefix tokens diverge: %v vs %v", full[:len(prefix)], prefix)
	}
}
