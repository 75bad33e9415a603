// Package article holds the curated-article data model and the
// aggregation pass that turns raw provider results into clean,
// deduplicated, recency-filtered candidates.
package article

// Article is one candidate news item. Title and URL are required for an
// item to survive aggregation; Category is assigned by the operator during
// selection and left empty until then.
type Article struct {
	Title    string
	URL      string
	Source   string
	Marker   string // provider-supplied free-text recency indicator
	Category string
}

// Buckets maps each search keyword to its accepted articles, preserving
// the order keywords were entered. Rendering and prompt construction both
// depend on that order being stable.
type Buckets struct {
	Keywords  []string
	ByKeyword map[string][]Article
}

// NewBuckets allocates an empty bucket set.
func NewBuckets() *Buckets {
	return &Buckets{ByKeyword: make(map[string][]Article)}
}

// Put stores the articles for a keyword, appending the keyword to the
// order on first sight.
func (b *Buckets) Put(keyword string, articles []Article) {
	if _, seen := b.ByKeyword[keyword]; !seen {
		b.Keywords = append(b.Keywords, keyword)
	}
	b.ByKeyword[keyword] = articles
}

// Get returns the articles for a keyword.
func (b *Buckets) Get(keyword string) []Article {
	return b.ByKeyword[keyword]
}

// Len counts all accepted articles across keywords.
func (b *Buckets) Len() int {
	n := 0
	for _, articles := range b.ByKeyword {
		n += len(articles)
	}
	return n
}

// Titles flattens all article titles in keyword order.
func (b *Buckets) Titles() []string {
	var titles []string
	for _, kw := range b.Keywords {
		for _, a := range b.ByKeyword[kw] {
			titles = append(titles, a.Title)
		}
	}
	return titles
}

// Empty reports whether no keyword produced any article.
func (b *Buckets) Empty() bool {
	return b == nil || b.Len() == 0
}
