package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/tokenizer"
	rankerrors "github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/errors"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/logger"
)

// docEntry is the per-document output of the tokenize phase: the catalog
// record plus the document-local postings.
type docEntry struct {
	doc      Document
	postings map[string][]int
}

// Build tokenizes every regular file under corpusDir and assembles the
// positional index, the document catalog, and the corpus statistics. Files
// are enumerated in lexical name order and DocIDs assigned as a monotonic
// counter over that order, so a rebuild over the same corpus reproduces the
// same IDs. Documents are tokenized concurrently, bounded by workers; the
// merge runs in DocID order, making the result independent of completion
// order. An empty corpus yields an empty index and zero stats.
func Build(ctx context.Context, corpusDir string, workers int) (PositionalIndex, Catalog, CorpusStats, error) {
	log := logger.WithComponent("indexer")

	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, nil, CorpusStats{}, fmt.Errorf("%w: reading corpus directory %s: %v",
			rankerrors.ErrCorpusUnreadable, corpusDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if workers < 1 {
		workers = 1
	}
	results := make([]docEntry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := tokenizeFile(filepath.Join(corpusDir, name), name)
			if err != nil {
				return err
			}
			results[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, CorpusStats{}, err
	}

	idx := make(PositionalIndex)
	catalog := make(Catalog, 0, len(results))
	stats := CorpusStats{}
	for i, entry := range results {
		docID := DocID(i)
		for term, positions := range entry.postings {
			docs, ok := idx[term]
			if !ok {
				docs = make(map[DocID][]int)
				idx[term] = docs
			}
			docs[docID] = positions
		}
		catalog = append(catalog, entry.doc)
		stats.Documents++
		stats.Tokens += int64(entry.doc.TokenCount)
		log.Debug("document indexed",
			"doc_id", docID,
			"name", entry.doc.Name,
			"token_count", entry.doc.TokenCount,
		)
	}
	stats.Terms = idx.Terms()

	log.Info("index build complete",
		"documents", stats.Documents,
		"tokens", stats.Tokens,
		"terms", stats.Terms,
	)
	return idx, catalog, stats, nil
}

// tokenizeFile reads one document and produces its catalog record and local
// postings. Token positions run across the whole document; the line-start
// table records where each text line begins in position space.
func tokenizeFile(path, name string) (docEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return docEntry{}, fmt.Errorf("%w: reading document %s: %v",
			rankerrors.ErrCorpusUnreadable, path, err)
	}
	lines := splitLines(string(data))

	postings := make(map[string][]int)
	lineStarts := make([]int, len(lines))
	pos := 0
	for n, line := range lines {
		lineStarts[n] = pos
		for _, term := range tokenizer.Tokenize(line) {
			postings[term] = append(postings[term], pos)
			pos++
		}
	}
	return docEntry{
		doc: Document{
			Name:       name,
			TokenCount: pos,
			Lines:      lines,
			LineStarts: lineStarts,
		},
		postings: postings,
	}, nil
}

// splitLines splits document text into lines, tolerating CRLF endings and
// dropping a single trailing newline.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
