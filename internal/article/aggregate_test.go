package article

import (
	"reflect"
	"testing"

	"metrowatch/internal/serpapi"
)

func acceptAll(string) bool { return true }
func rejectAll(string) bool { return false }

func src(name string) serpapi.SourceField { return serpapi.SourceField{Name: name} }

func TestAggregateDropsMissingFields(t *testing.T) {
	raw := []serpapi.NewsResult{
		{Title: "", Link: "https://example.com/1", Date: "1 hour ago"},
		{Title: "no link", Link: "", Date: "1 hour ago"},
		{Title: "ok", Link: "https://example.com/2", Date: "1 hour ago", Source: src("報")},
	}

	got := Aggregate(raw, acceptAll)
	if len(got) != 1 || got[0].Title != "ok" {
		t.Fatalf("got %+v, want single %q article", got, "ok")
	}
}

func TestAggregateFirstOccurrenceWins(t *testing.T) {
	raw := []serpapi.NewsResult{
		{Title: "same", Link: "https://example.com/first", Date: "1 hour ago", Source: src("甲")},
		{Title: "same", Link: "https://example.com/second", Date: "2 hours ago", Source: src("乙")},
	}

	got := Aggregate(raw, acceptAll)
	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	if got[0].URL != "https://example.com/first" {
		t.Errorf("kept %q, want first occurrence", got[0].URL)
	}

	// Reordered input keeps exactly one article, equal to whichever came
	// first in traversal order.
	raw[0], raw[1] = raw[1], raw[0]
	got = Aggregate(raw, acceptAll)
	if len(got) != 1 {
		t.Fatalf("after reorder got %d articles, want 1", len(got))
	}
	if got[0].URL != "https://example.com/second" {
		t.Errorf("after reorder kept %q, want new first occurrence", got[0].URL)
	}
}

func TestAggregateFlattensNestedStories(t *testing.T) {
	raw := []serpapi.NewsResult{
		{
			Title: "lead", Link: "https://example.com/lead", Date: "1 hour ago",
			Stories: []serpapi.NewsResult{
				{Title: "related A", Link: "https://example.com/a", Date: "2 hours ago"},
				{Title: "related B", Link: "https://example.com/b", Date: "3 hours ago"},
			},
		},
		{Title: "second lead", Link: "https://example.com/second", Date: "1 hour ago"},
	}

	got := Aggregate(raw, acceptAll)
	want := []string{"lead", "related A", "related B", "second lead"}
	var titles []string
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestAggregateAppliesClassifier(t *testing.T) {
	raw := []serpapi.NewsResult{
		{Title: "fresh", Link: "https://example.com/1", Date: "1 hour ago"},
		{Title: "stale", Link: "https://example.com/2", Date: "2 days ago"},
	}

	got := Aggregate(raw, func(marker string) bool { return marker == "1 hour ago" })
	if len(got) != 1 || got[0].Title != "fresh" {
		t.Fatalf("got %+v, want only the fresh article", got)
	}

	if got := Aggregate(raw, rejectAll); len(got) != 0 {
		t.Errorf("rejectAll kept %d articles, want 0", len(got))
	}
}

func TestAggregateNormalizesSource(t *testing.T) {
	raw := []serpapi.NewsResult{
		{Title: "t", Link: "https://example.com/1", Date: "now"},
	}
	got := Aggregate(raw, acceptAll)
	if got[0].Source != "unknown" {
		t.Errorf("source = %q, want unknown fallback", got[0].Source)
	}
}

func TestBucketsPreserveKeywordOrder(t *testing.T) {
	b := NewBuckets()
	b.Put("捷運", []Article{{Title: "a"}, {Title: "b"}})
	b.Put("輕軌", []Article{{Title: "c"}})
	b.Put("捷運", []Article{{Title: "a"}, {Title: "b"}}) // re-put must not duplicate order

	if !reflect.DeepEqual(b.Keywords, []string{"捷運", "輕軌"}) {
		t.Errorf("keyword order = %v", b.Keywords)
	}
	if !reflect.DeepEqual(b.Titles(), []string{"a", "b", "c"}) {
		t.Errorf("titles = %v", b.Titles())
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
	if b.Empty() {
		t.Error("Empty() = true for populated buckets")
	}
}
