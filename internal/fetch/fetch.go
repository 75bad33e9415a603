// Package fetch runs one search cycle: one or more provider calls per
// keyword, aggregation, and per-keyword error isolation.
package fetch

import (
	"context"
	"sync"
	"time"

	"metrowatch/internal/article"
	"metrowatch/internal/metrics"
	"metrowatch/internal/recency"
	"metrowatch/internal/serpapi"
)

// Searcher is the slice of the provider client the orchestrator needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts serpapi.SearchOptions) ([]serpapi.NewsResult, error)
}

// KeywordError reports a failed search for one keyword. It is surfaced to
// the operator, never raised: other keywords keep their results.
type KeywordError struct {
	Keyword string
	Err     error
}

func (e KeywordError) Error() string {
	return "keyword " + e.Keyword + ": " + e.Err.Error()
}

// Orchestrator issues searches and turns raw results into buckets.
type Orchestrator struct {
	searcher Searcher
	policy   recency.Policy
	opts     serpapi.SearchOptions
	pages    int
	now      func() time.Time
}

// New builds an orchestrator. pages caps paginated calls per keyword and
// is clamped to at least one.
func New(searcher Searcher, policy recency.Policy, opts serpapi.SearchOptions, pages int) *Orchestrator {
	if pages < 1 {
		pages = 1
	}
	return &Orchestrator{
		searcher: searcher,
		policy:   policy,
		opts:     opts,
		pages:    pages,
		now:      time.Now,
	}
}

// Fetch searches every keyword and returns the aggregated buckets in the
// order the keywords were given, plus the per-keyword failures. A failed
// keyword gets an empty bucket; the error is reported alongside. Keywords
// are fetched concurrently since each call is independent.
func (o *Orchestrator) Fetch(ctx context.Context, keywords []string) (*article.Buckets, []KeywordError) {
	type outcome struct {
		articles []article.Article
		err      error
	}
	results := make([]outcome, len(keywords))

	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()
			raw, err := o.fetchKeyword(ctx, kw)
			if err != nil {
				metrics.Global.IncrementSearchErrors()
				results[i] = outcome{err: err}
				return
			}
			now := o.now()
			results[i] = outcome{articles: article.Aggregate(raw, func(marker string) bool {
				return o.policy.IsRecent(marker, now)
			})}
		}(i, kw)
	}
	wg.Wait()

	buckets := article.NewBuckets()
	var errs []KeywordError
	for i, kw := range keywords {
		buckets.Put(kw, results[i].articles)
		if results[i].err != nil {
			errs = append(errs, KeywordError{Keyword: kw, Err: results[i].err})
		}
	}

	// Record any failure for the monitoring endpoint; the cycle counts as
	// unhealthy only when no keyword produced results.
	if len(errs) > 0 {
		metrics.Global.SetError(errs[len(errs)-1].Error())
	}
	if len(keywords) == 0 || len(errs) < len(keywords) {
		metrics.Global.SetLastFetch()
	}
	return buckets, errs
}

// fetchKeyword collects up to o.pages result pages for one keyword. A
// failure on the first page fails the keyword; a failure on a later page
// keeps what was already collected.
func (o *Orchestrator) fetchKeyword(ctx context.Context, keyword string) ([]serpapi.NewsResult, error) {
	var all []serpapi.NewsResult
	pageSize := o.opts.Num
	if pageSize <= 0 {
		pageSize = 100
	}

	for page := 0; page < o.pages; page++ {
		opts := o.opts
		opts.Start = page * pageSize

		metrics.Global.IncrementSearchesIssued()
		raw, err := o.searcher.Search(ctx, keyword, opts)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			break
		}
		if len(raw) == 0 {
			break
		}
		all = append(all, raw...)
	}
	return all, nil
}
