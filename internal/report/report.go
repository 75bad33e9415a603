// Package report turns the confirmed selection into the final plain-text
// message: a fixed greeting, then each category in its declared order with
// one title/URL pair per article.
package report

import (
	"context"
	"strings"

	"metrowatch/internal/article"
	"metrowatch/internal/metrics"
)

// DefaultGreeting is the fixed message preamble.
const DefaultGreeting = "各位長官、同仁早安，\n今日新聞輿情連結如下：\n\n"

// Shortener resolves one long URL. Failures are per-URL and non-fatal.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// Composer renders reports for a fixed, ordered category set. Articles
// with no category (or an unknown one) land in the last category.
type Composer struct {
	categories []string
	shortener  Shortener
	greeting   string
}

func NewComposer(categories []string, shortener Shortener) *Composer {
	return &Composer{
		categories: categories,
		shortener:  shortener,
		greeting:   DefaultGreeting,
	}
}

// Compose renders the message for the selected articles. Each URL is
// shortened independently; when shortening fails the original URL is used
// and the rest of the report is unaffected.
func (c *Composer) Compose(ctx context.Context, selected []article.Article) string {
	if len(c.categories) == 0 || len(selected) == 0 {
		return ""
	}

	grouped := make(map[string][]article.Article)
	fallback := c.categories[len(c.categories)-1]
	known := make(map[string]struct{}, len(c.categories))
	for _, cat := range c.categories {
		known[cat] = struct{}{}
	}
	for _, a := range selected {
		cat := a.Category
		if _, ok := known[cat]; !ok {
			cat = fallback
		}
		grouped[cat] = append(grouped[cat], a)
	}

	var b strings.Builder
	b.WriteString(c.greeting)
	for _, cat := range c.categories {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		b.WriteString(cat)
		b.WriteString("\n")
		for _, a := range items {
			b.WriteString(a.Title)
			b.WriteString("\n")
			b.WriteString(c.resolveURL(ctx, a.URL))
			b.WriteString("\n\n")
		}
	}

	metrics.Global.IncrementReportsComposed()
	return strings.TrimSpace(b.String())
}

func (c *Composer) resolveURL(ctx context.Context, longURL string) string {
	if c.shortener == nil {
		return longURL
	}
	short, err := c.shortener.Shorten(ctx, longURL)
	if err != nil {
		metrics.Global.IncrementShortenFailures()
		return longURL
	}
	return short
}
