package fetch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"metrowatch/internal/metrics"
	"metrowatch/internal/recency"
	"metrowatch/internal/serpapi"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]serpapi.NewsResult
	errs    map[string]error
	paged   map[string][][]serpapi.NewsResult // per-keyword pages, consumed in order
}

func (f *fakeSearcher) Search(_ context.Context, query string, opts serpapi.SearchOptions) ([]serpapi.NewsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s@%d", query, opts.Start))
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	if pages, ok := f.paged[query]; ok {
		idx := opts.Start / 100
		if idx >= len(pages) {
			return nil, nil
		}
		return pages[idx], nil
	}
	return f.results[query], nil
}

func testPolicy(t *testing.T) recency.Policy {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return recency.NewPolicy(loc, recency.ModeStrict)
}

func result(title string) serpapi.NewsResult {
	return serpapi.NewsResult{Title: title, Link: "https://example.com/" + title, Date: "1 hour ago"}
}

func TestFetchPreservesKeywordOrder(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]serpapi.NewsResult{
		"捷運": {result("a")},
		"輕軌": {result("b")},
		"軌道": {result("c")},
	}}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{}, 1)

	buckets, errs := o.Fetch(context.Background(), []string{"捷運", "輕軌", "軌道"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !reflect.DeepEqual(buckets.Keywords, []string{"捷運", "輕軌", "軌道"}) {
		t.Errorf("keyword order = %v", buckets.Keywords)
	}
}

func TestFetchIsolatesKeywordFailure(t *testing.T) {
	boom := errors.New("quota exhausted")
	searcher := &fakeSearcher{
		results: map[string][]serpapi.NewsResult{
			"捷運": {result("a")},
			"軌道": {result("c")},
		},
		errs: map[string]error{"輕軌": boom},
	}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{}, 1)

	buckets, errs := o.Fetch(context.Background(), []string{"捷運", "輕軌", "軌道"})

	if len(errs) != 1 || errs[0].Keyword != "輕軌" || !errors.Is(errs[0].Err, boom) {
		t.Fatalf("errs = %v, want single 輕軌 failure", errs)
	}
	if len(buckets.Get("輕軌")) != 0 {
		t.Error("failed keyword should have an empty bucket")
	}
	if len(buckets.Get("捷運")) != 1 || len(buckets.Get("軌道")) != 1 {
		t.Error("other keywords must keep their results")
	}
	// The failed keyword still appears in order, with an empty bucket.
	if !reflect.DeepEqual(buckets.Keywords, []string{"捷運", "輕軌", "軌道"}) {
		t.Errorf("keyword order = %v", buckets.Keywords)
	}
}

func TestFetchRecordsPartialFailureButStaysHealthy(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]serpapi.NewsResult{"捷運": {result("a")}},
		errs:    map[string]error{"輕軌": errors.New("quota exhausted")},
	}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{}, 1)

	o.Fetch(context.Background(), []string{"捷運", "輕軌"})

	stats := metrics.Global.GetStats()
	if !stats["is_healthy"].(bool) {
		t.Error("partial failure must not mark the process unhealthy")
	}
	if le := stats["last_error"].(string); !strings.Contains(le, "輕軌") {
		t.Errorf("last_error = %q, want the failed keyword recorded", le)
	}
}

func TestFetchAllKeywordsFailedIsUnhealthy(t *testing.T) {
	boom := errors.New("invalid key")
	searcher := &fakeSearcher{errs: map[string]error{"捷運": boom, "輕軌": boom}}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{}, 1)

	o.Fetch(context.Background(), []string{"捷運", "輕軌"})

	stats := metrics.Global.GetStats()
	if stats["is_healthy"].(bool) {
		t.Error("a fully failed cycle must mark the process unhealthy")
	}

	// A later successful cycle recovers health.
	searcher.errs = nil
	searcher.results = map[string][]serpapi.NewsResult{"捷運": {result("a")}}
	o.Fetch(context.Background(), []string{"捷運"})
	if !metrics.Global.GetStats()["is_healthy"].(bool) {
		t.Error("successful cycle must restore health")
	}
}

func TestFetchPaginatesAndMerges(t *testing.T) {
	searcher := &fakeSearcher{paged: map[string][][]serpapi.NewsResult{
		"捷運": {
			{result("p1a"), result("p1b")},
			{result("p2a"), result("p1a")}, // duplicate across pages
		},
	}}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{Num: 100}, 2)

	buckets, errs := o.Fetch(context.Background(), []string{"捷運"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var titles []string
	for _, a := range buckets.Get("捷運") {
		titles = append(titles, a.Title)
	}
	want := []string{"p1a", "p1b", "p2a"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v (dedup across pages)", titles, want)
	}
	if !reflect.DeepEqual(searcher.calls, []string{"捷運@0", "捷運@100"}) {
		t.Errorf("calls = %v", searcher.calls)
	}
}

func TestFetchStopsPaginationOnEmptyPage(t *testing.T) {
	searcher := &fakeSearcher{paged: map[string][][]serpapi.NewsResult{
		"捷運": {{result("only")}},
	}}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{Num: 100}, 3)

	buckets, _ := o.Fetch(context.Background(), []string{"捷運"})
	if got := len(buckets.Get("捷運")); got != 1 {
		t.Fatalf("got %d articles, want 1", got)
	}
	if len(searcher.calls) != 2 {
		t.Errorf("issued %d calls, want 2 (stop after empty page)", len(searcher.calls))
	}
}

func TestFetchAppliesRecencyPolicy(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]serpapi.NewsResult{
		"捷運": {
			{Title: "fresh", Link: "https://example.com/f", Date: "3 小時前"},
			{Title: "stale", Link: "https://example.com/s", Date: "2 days ago"},
		},
	}}
	o := New(searcher, testPolicy(t), serpapi.SearchOptions{}, 1)

	buckets, _ := o.Fetch(context.Background(), []string{"捷運"})
	got := buckets.Get("捷運")
	if len(got) != 1 || got[0].Title != "fresh" {
		t.Fatalf("got %+v, want only the fresh article", got)
	}
}
