package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	rankerrors "github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/errors"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing corpus file %s: %v", name, err)
		}
	}
	return dir
}

func TestBuildPositions(t *testing.T) {
	// Lexical file-name order pins DocIDs: doc_a.txt -> 0, doc_b.txt -> 1.
	dir := writeCorpus(t, map[string]string{
		"doc_a.txt": "cat dog cat\n",
		"doc_b.txt": "dog cat\n",
	})

	idx, catalog, stats, err := Build(context.Background(), dir, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantIdx := PositionalIndex{
		"cat": {0: []int{0, 2}, 1: []int{1}},
		"dog": {0: []int{1}, 1: []int{0}},
	}
	if !reflect.DeepEqual(idx, wantIdx) {
		t.Errorf("index = %v, want %v", idx, wantIdx)
	}

	if stats.Documents != 2 || stats.Tokens != 5 || stats.Terms != 2 {
		t.Errorf("stats = %+v, want 2 documents, 5 tokens, 2 terms", stats)
	}

	if len(catalog) != 2 {
		t.Fatalf("catalog holds %d documents, want 2", len(catalog))
	}
	if catalog[0].Name != "doc_a.txt" || catalog[1].Name != "doc_b.txt" {
		t.Errorf("catalog names = %q, %q", catalog[0].Name, catalog[1].Name)
	}
	if catalog[0].TokenCount != 3 || catalog[1].TokenCount != 2 {
		t.Errorf("token counts = %d, %d, want 3, 2", catalog[0].TokenCount, catalog[1].TokenCount)
	}
}

// Every position in a posting must map back to its own term through the
// catalog's position space.
func TestBuildPositionInvariants(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"fable.txt": "north wind and sun\nsun and wind\n\nnorth north north\n",
	})

	idx, catalog, _, err := Build(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for term, docs := range idx {
		for docID, positions := range docs {
			doc := catalog[docID]
			prev := -1
			for _, p := range positions {
				if p <= prev {
					t.Fatalf("term %q doc %d: positions not strictly increasing: %v", term, docID, positions)
				}
				prev = p
				if p < 0 || p >= doc.TokenCount {
					t.Fatalf("term %q doc %d: position %d outside [0,%d)", term, docID, p, doc.TokenCount)
				}
			}
		}
	}
}

func TestBuildLineStarts(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"doc.txt": "cat dog\n\nbird\n",
	})

	_, catalog, _, err := Build(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := catalog[0]

	tests := []struct {
		pos      int
		wantLine string
		wantOK   bool
	}{
		{0, "cat dog", true},
		{1, "cat dog", true},
		{2, "bird", true},
		{3, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		line, ok := doc.LineAt(tt.pos)
		if ok != tt.wantOK || line != tt.wantLine {
			t.Errorf("LineAt(%d) = (%q, %t), want (%q, %t)", tt.pos, line, ok, tt.wantLine, tt.wantOK)
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx, catalog, stats, err := Build(context.Background(), t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Build on empty corpus: %v", err)
	}
	if stats != (CorpusStats{}) {
		t.Errorf("stats = %+v, want all zero", stats)
	}
	if len(idx) != 0 || len(catalog) != 0 {
		t.Errorf("expected empty index and catalog, got %d terms, %d documents", len(idx), len(catalog))
	}
}

func TestBuildMissingCorpusDir(t *testing.T) {
	_, _, _, err := Build(context.Background(), filepath.Join(t.TempDir(), "nope"), 4)
	if !errors.Is(err, rankerrors.ErrCorpusUnreadable) {
		t.Fatalf("err = %v, want ErrCorpusUnreadable", err)
	}
}

// Rebuilding the same corpus must reproduce the identical index regardless
// of worker count: the merge runs in DocID order, not completion order.
func TestBuildDeterministic(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.txt": "sun wind north sun\n",
		"b.txt": "wind wind sky\n",
		"c.txt": "north sky sun cloud\n",
		"d.txt": "cloud\n",
	})

	idx1, cat1, stats1, err := Build(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Build workers=1: %v", err)
	}
	idx8, cat8, stats8, err := Build(context.Background(), dir, 8)
	if err != nil {
		t.Fatalf("Build workers=8: %v", err)
	}

	if !reflect.DeepEqual(idx1, idx8) {
		t.Errorf("index differs across worker counts")
	}
	if !reflect.DeepEqual(cat1, cat8) {
		t.Errorf("catalog differs across worker counts")
	}
	if stats1 != stats8 {
		t.Errorf("stats differ: %+v vs %+v", stats1, stats8)
	}
}
