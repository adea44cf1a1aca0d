package boox

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/boox/encoder"
	"github.com/poiesic/boox/history"
	"github.com/poiesic/boox/result"
	"github.com/poiesic/boox/search"
)

// QueryExpanderFunc rewrites a raw query before normalization.
type QueryExpanderFunc func(ctx context.Context, query string) (string, error)

// MatchingCoefficientFunc rates how well a document's attributes match a query.
type MatchingCoefficientFunc = search.MatchingCoefficientFunc

// SearchOptions tunes a single search. A nil value uses all defaults.
type SearchOptions struct {
	QueryExpander       QueryExpanderFunc
	MatchingCoefficient MatchingCoefficientFunc
	// Limit caps the results returned; <= 0 returns all of them.
	Limit int
	// HighlightTag overrides result.DefaultHighlightTag when non-zero.
	HighlightTag [2]string
	// UseQueryVector ranks by cosine similarity instead of the plain TF-IDF sum.
	UseQueryVector bool
}

// SearchSync runs a query on the calling goroutine.
//
// Rankings are cached per normalized query; a cached ranking is returned
// as-is, whatever the other options. Hook failures are logged and yield an
// empty result slice together with the error.
func (e *Engine) SearchSync(query string, opts *SearchOptions) ([]*result.SearchResult, error) {
	return e.search(context.Background(), query, opts, e.sequential)
}

// Search is SearchSync with scoring and coefficient calls spread over the
// worker pool. Rankings are identical to SearchSync's.
func (e *Engine) Search(ctx context.Context, query string, opts *SearchOptions) ([]*result.SearchResult, error) {
	executor := e.pooled
	if e.closed.Load() {
		executor = e.sequential
	}
	return e.search(ctx, query, opts, executor)
}

func (e *Engine) search(ctx context.Context, query string, opts *SearchOptions, executor *search.Executor) ([]*result.SearchResult, error) {
	var o SearchOptions
	if opts != nil {
		o = *opts
	}
	e.searchMonitor.Start(query)

	results, err := e.runSearch(ctx, query, o, executor)
	if err != nil {
		e.logger.Error("error occurred while searching", "query", query, "err", err)
		e.searchMonitor.Finish(nil, err)
		return []*result.SearchResult{}, err
	}
	e.searchMonitor.Finish(results, nil)
	return results, nil
}

func (e *Engine) runSearch(ctx context.Context, query string, o SearchOptions, executor *search.Executor) ([]*result.SearchResult, error) {
	if err := result.ValidateHighlightTag(o.HighlightTag); err != nil {
		return nil, err
	}

	if o.QueryExpander != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		expanded, err := o.QueryExpander(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQueryExpansion, err)
		}
		query = expanded
	}
	e.searchMonitor.AfterExpansion(query)

	normalized := NormalizeQuery(e.Encoder(), query)

	if cached, ok := e.cache.Get(normalized); ok {
		e.history.Record(normalized)
		e.searchMonitor.CacheHit(normalized, len(cached))
		return truncate(cached, o.Limit), nil
	}

	req := search.Request{
		Query:          normalized,
		HighlightTag:   o.HighlightTag,
		UseQueryVector: o.UseQueryVector,
	}
	e.mu.RLock()
	generation := e.cache.Generation()
	enc := e.model.Encoder()
	results, err := executor.Score(ctx, e.model, req)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if o.MatchingCoefficient != nil {
		if err := executor.ApplyCoefficient(ctx, enc, results, o.MatchingCoefficient); err != nil {
			return nil, err
		}
	}
	search.Rank(results)

	e.cache.PutIfCurrent(normalized, results, generation)
	e.history.Record(normalized)
	return truncate(results, o.Limit), nil
}

// NormalizeQuery normalizes a query the way searches do: encoder
// normalization, then one trailing period removed.
func NormalizeQuery(enc *encoder.Encoder, query string) string {
	return strings.TrimSuffix(enc.Normalize(query), ".")
}

func truncate(results []*result.SearchResult, limit int) []*result.SearchResult {
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return append(make([]*result.SearchResult, 0, len(results)), results...)
}

// SearchHistory returns up to limit recent normalized queries, newest first.
// limit <= 0 means history.DefaultLimit.
func (e *Engine) SearchHistory(limit int) []string {
	return e.history.Recent(limit)
}

// PopularSearches returns up to limit queries by descending search count.
// limit <= 0 means history.DefaultLimit.
func (e *Engine) PopularSearches(limit int) []history.Popularity {
	return e.history.Popular(limit)
}

// SearchSuggestions returns popular queries starting with prefix.
func (e *Engine) SearchSuggestions(prefix string, opts *history.SuggestionOptions) []string {
	return e.history.Suggestions(prefix, opts)
}
