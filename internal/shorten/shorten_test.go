package shorten

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"metrowatch/internal/cache"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(cache.New(), 5*time.Second)
	c.endpoint = srv.URL
	return c
}

func TestShortenSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://example.com/very/long/path" {
			t.Errorf("url param = %q", got)
		}
		w.Write([]byte("https://tinyurl.com/abc123"))
	})

	got, err := c.Shorten(context.Background(), "https://example.com/very/long/path")
	if err != nil {
		t.Fatalf("Shorten: %v", err)
	}
	if got != "https://tinyurl.com/abc123" {
		t.Errorf("Shorten = %q", got)
	}
}

func TestShortenNonURLBodyIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Error: invalid URL supplied"))
	})

	if _, err := c.Shorten(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for non-URL body")
	}
}

func TestShortenHTTPErrorIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	if _, err := c.Shorten(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestShortenCachesPerURL(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("https://tinyurl.com/abc123"))
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Shorten(context.Background(), "https://example.com/a"); err != nil {
			t.Fatalf("Shorten #%d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("endpoint hit %d times, want 1", calls)
	}

	if _, err := c.Shorten(context.Background(), "https://example.com/b"); err != nil {
		t.Fatalf("Shorten: %v", err)
	}
	if calls != 2 {
		t.Errorf("endpoint hit %d times, want 2 for a second URL", calls)
	}
}

func TestShortenFailureNotCached(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte("Error"))
			return
		}
		w.Write([]byte("https://tinyurl.com/ok"))
	})

	if _, err := c.Shorten(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected first call to fail")
	}
	got, err := c.Shorten(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("second Shorten: %v", err)
	}
	if got != "https://tinyurl.com/ok" {
		t.Errorf("Shorten = %q", got)
	}
}
