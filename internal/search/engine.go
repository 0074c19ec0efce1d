package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/index"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/logger"
)

// Engine answers queries against an immutable loaded index. It holds no
// per-query state, so one Engine serves any number of concurrent callers
// without locking.
type Engine struct {
	idx     index.PositionalIndex
	catalog index.Catalog
	stats   index.CorpusStats
	weights Weights
	workers int
	logger  *slog.Logger
}

// NewEngine wraps a loaded index, catalog, and stats with ranking weights.
func NewEngine(idx index.PositionalIndex, catalog index.Catalog, stats index.CorpusStats, weights Weights) *Engine {
	return &Engine{
		idx:     idx,
		catalog: catalog,
		stats:   stats,
		weights: weights,
		workers: runtime.NumCPU(),
		logger:  logger.WithComponent("query-engine"),
	}
}

// Stats returns the corpus statistics recorded at build time.
func (e *Engine) Stats() index.CorpusStats {
	return e.stats
}

// Search parses one raw query line and returns the ranked results. A blank
// line, or a query whose every term is absent from the vocabulary, yields an
// empty result; neither is an error. Candidates are scored independently
// and in parallel; scoring is pure, so the parallelism is unobservable in
// the output.
func (e *Engine) Search(ctx context.Context, raw string) (Query, []Result, error) {
	q := ParseQuery(raw)
	if q.Empty() {
		return q, nil, nil
	}

	candidates := e.retrieve(q)
	if len(candidates) == 0 {
		return q, nil, nil
	}

	results := make([]Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, docID := range candidates {
		i, docID := i, docID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := Score(q.Terms, e.docPostings(q.Terms, docID), e.weights)
			m.DocID = docID
			results[i] = Result{DocID: uint32(docID), Score: m.Score, Match: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return q, nil, err
	}

	ranked := results[:0]
	for _, r := range results {
		if r.Match.MatchedTerms > 0 {
			ranked = append(ranked, r)
		}
	}
	Rank(ranked)

	e.logger.Debug("query executed",
		"terms", q.Terms,
		"candidates", len(candidates),
		"results", len(ranked),
	)
	return q, ranked, nil
}

// retrieve resolves the candidate set: the union, over query terms present
// in the vocabulary, of documents with a non-empty posting for that term.
// The set is returned sorted so downstream work is deterministic.
func (e *Engine) retrieve(q Query) []index.DocID {
	seen := make(map[index.DocID]struct{})
	for _, term := range q.Terms {
		for docID, positions := range e.idx.Postings(term) {
			if len(positions) > 0 {
				seen[docID] = struct{}{}
			}
		}
	}
	candidates := make([]index.DocID, 0, len(seen))
	for docID := range seen {
		candidates = append(candidates, docID)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates
}

// docPostings restricts each query term's posting to one document.
func (e *Engine) docPostings(terms []string, docID index.DocID) map[string][]int {
	postings := make(map[string][]int, len(terms))
	for _, term := range terms {
		if positions, ok := e.idx.Postings(term)[docID]; ok {
			postings[term] = positions
		}
	}
	return postings
}

// MatchedLine returns the catalog text line containing the result's
// representative matched position.
func (e *Engine) MatchedLine(r Result) (string, bool) {
	docID := int(r.DocID)
	if docID >= len(e.catalog) {
		return "", false
	}
	return e.catalog[docID].LineAt(r.Match.RepPos)
}

// Respond writes ranked results, one DocID per line. In display mode the
// text line containing the representative matched position follows each
// DocID.
func (e *Engine) Respond(w io.Writer, q Query, results []Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%d\n", r.DocID); err != nil {
			return err
		}
		if !q.DisplayMode {
			continue
		}
		if line, ok := e.MatchedLine(r); ok {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run reads query lines from r until EOF, answering each on w. Blank and
// whitespace-only lines are skipped and the loop continues.
func (e *Engine) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, results, err := e.Search(ctx, line)
		if err != nil {
			return err
		}
		if err := e.Respond(w, q, results); err != nil {
			return err
		}
	}
	return scanner.Err()
}
