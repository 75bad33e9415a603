// Package scrape fetches an article page on demand and extracts a short
// text preview for the selection screen. Best effort only: news sites
// differ wildly and a failed extraction is never more than a status-line
// message.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Paragraph selectors tried in order; the first that yields text wins.
var selectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".story p",
	"main p",
	".content p",
	"p",
}

type Previewer struct {
	httpClient *http.Client
	maxRunes   int
}

func NewPreviewer(timeout time.Duration, maxRunes int) *Previewer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRunes <= 0 {
		maxRunes = 600
	}
	return &Previewer{
		httpClient: &http.Client{Timeout: timeout},
		maxRunes:   maxRunes,
	}
}

// Preview downloads url and returns the leading paragraphs of its body
// text, truncated to the configured length.
func (p *Previewer) Preview(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("loading page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	text := extractParagraphs(doc)
	if text == "" {
		return "", fmt.Errorf("no readable content")
	}
	return truncateRunes(text, p.maxRunes), nil
}

func extractParagraphs(doc *goquery.Document) string {
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if len(paragraphs) >= 5 {
				return
			}
			text := strings.TrimSpace(s.Text())
			// Skip nav crumbs, bylines and other short fragments.
			if len([]rune(text)) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
