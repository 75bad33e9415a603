// Package metrics keeps process-wide counters for the curation pipeline,
// exposed as JSON by the optional monitoring endpoint.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	SearchesIssued      int64
	SearchErrors        int64
	ArticlesSeen        int64
	StaleFiltered       int64
	DuplicatesFiltered  int64
	RecommendationCalls int64
	ReportsComposed     int64
	ShortenFailures     int64
	MessagesSent        int64

	// Status
	LastFetchTime time.Time
	LastError     string
	LastErrorTime time.Time
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementSearchesIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchesIssued++
}

func (m *Metrics) IncrementSearchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchErrors++
}

func (m *Metrics) IncrementArticlesSeen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSeen++
}

func (m *Metrics) IncrementStaleFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleFiltered++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementRecommendationCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecommendationCalls++
}

func (m *Metrics) IncrementReportsComposed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportsComposed++
}

func (m *Metrics) IncrementShortenFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShortenFailures++
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) SetLastFetch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFetchTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"searches_issued":      m.SearchesIssued,
		"search_errors":        m.SearchErrors,
		"articles_seen":        m.ArticlesSeen,
		"stale_filtered":       m.StaleFiltered,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"recommendation_calls": m.RecommendationCalls,
		"reports_composed":     m.ReportsComposed,
		"shorten_failures":     m.ShortenFailures,
		"messages_sent":        m.MessagesSent,
		"last_fetch_time":      m.LastFetchTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"is_healthy":           m.IsHealthy,
	}
}
