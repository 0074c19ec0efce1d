// Package server exposes the query engine as a long-lived HTTP service with
// an optional Redis query cache, health probes, and Prometheus metrics. The
// read path is stateless over the immutable loaded index, so every request
// is independently cancellable through its own context.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/search"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/logger"
	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/metrics"
)

// SearchResponse is the JSON payload of one answered query.
type SearchResponse struct {
	Query     string       `json:"query"`
	TotalHits int          `json:"total_hits"`
	Results   []ResultItem `json:"results"`
}

// ResultItem is one ranked document in a SearchResponse.
type ResultItem struct {
	DocID uint32  `json:"doc_id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Line  string  `json:"line,omitempty"`
}

// Handler serves search requests over a loaded engine.
type Handler struct {
	engine       *search.Engine
	catalog      func(docID uint32) string
	cache        *QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// NewHandler wires the engine, the optional query cache (nil disables
// caching), and the optional metrics set (nil disables instrumentation).
func NewHandler(engine *search.Engine, docName func(docID uint32) string, cache *QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		engine:       engine,
		catalog:      docName,
		cache:        cache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search answers GET /api/v1/search?q=...&limit=...&lines=true.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}
	lines := r.URL.Query().Get("lines") == "true"

	var result *SearchResponse
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, lines, func() (*SearchResponse, error) {
			return h.execute(ctx, query, limit, lines)
		})
	} else {
		result, err = h.execute(ctx, query, limit, lines)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.recordQuery("error", cacheHit, start, 0)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	resultType := "hit"
	if len(result.Results) == 0 {
		resultType = "zero_result"
	}
	h.recordQuery(resultType, cacheHit, start, len(result.Results))
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// execute runs one query against the engine and shapes the JSON response.
func (h *Handler) execute(ctx context.Context, query string, limit int, lines bool) (*SearchResponse, error) {
	_, ranked, err := h.engine.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	resp := &SearchResponse{
		Query:     query,
		TotalHits: len(ranked),
		Results:   make([]ResultItem, 0, min(limit, len(ranked))),
	}
	for _, r := range ranked {
		if len(resp.Results) >= limit {
			break
		}
		item := ResultItem{
			DocID: r.DocID,
			Score: r.Score,
		}
		if h.catalog != nil {
			item.Name = h.catalog(r.DocID)
		}
		if lines {
			if line, ok := h.engine.MatchedLine(r); ok {
				item.Line = line
			}
		}
		resp.Results = append(resp.Results, item)
	}
	return resp, nil
}

// CacheStats answers GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate answers POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) recordQuery(resultType string, cacheHit bool, start time.Time, results int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	h.metrics.SearchResultsCount.Observe(float64(results))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
