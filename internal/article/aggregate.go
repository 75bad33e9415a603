package article

import (
	"metrowatch/internal/metrics"
	"metrowatch/internal/serpapi"
)

// Classifier decides whether a date marker is fresh enough to keep.
type Classifier func(marker string) bool

// Aggregate flattens raw provider results into accepted articles, in
// first-seen order. Nested related stories are treated as first-class
// candidates, not metadata. An item is dropped when its title or link is
// missing, when its title was already accepted in this pass, or when the
// classifier rejects its marker. The output is deterministic for a fixed
// input, even when that input spans multiple paginated calls.
func Aggregate(raw []serpapi.NewsResult, classify Classifier) []Article {
	seen := make(map[string]struct{})
	var accepted []Article

	var walk func(items []serpapi.NewsResult)
	walk = func(items []serpapi.NewsResult) {
		for _, item := range items {
			metrics.Global.IncrementArticlesSeen()

			if item.Title != "" && item.Link != "" {
				if _, dup := seen[item.Title]; dup {
					metrics.Global.IncrementDuplicatesFiltered()
				} else if !classify(item.Date) {
					metrics.Global.IncrementStaleFiltered()
				} else {
					seen[item.Title] = struct{}{}
					accepted = append(accepted, Article{
						Title:  item.Title,
						URL:    item.Link,
						Source: item.Source.String(),
						Marker: item.Date,
					})
				}
			}

			if len(item.Stories) > 0 {
				walk(item.Stories)
			}
		}
	}
	walk(raw)

	return accepted
}
