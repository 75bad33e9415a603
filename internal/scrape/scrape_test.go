package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPreviewExtractsArticleParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<nav><p>首頁</p></nav>
			<article>
				<p>新北捷運環狀線今日清晨恢復正常營運，官方表示訊號系統已完成檢修。</p>
				<p>通勤旅客表示影響不大，多數班次均準點發車，月台秩序良好。</p>
			</article>
		</body></html>`))
	}))
	defer srv.Close()

	p := NewPreviewer(5*time.Second, 600)
	got, err := p.Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(got, "恢復正常營運") {
		t.Errorf("preview missing article text: %q", got)
	}
	if strings.Contains(got, "首頁") {
		t.Errorf("preview picked up nav fragment: %q", got)
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("這是一段很長的新聞內文，", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><article><p>" + long + "</p></article></body></html>"))
	}))
	defer srv.Close()

	p := NewPreviewer(5*time.Second, 50)
	got, err := p.Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if n := len([]rune(got)); n > 51 {
		t.Errorf("preview length = %d runes, want <= 51", n)
	}
}

func TestPreviewNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><div>ok</div></body></html>"))
	}))
	defer srv.Close()

	p := NewPreviewer(5*time.Second, 600)
	if _, err := p.Preview(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for page without paragraphs")
	}
}

func TestPreviewHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	p := NewPreviewer(5*time.Second, 600)
	if _, err := p.Preview(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 410")
	}
}
