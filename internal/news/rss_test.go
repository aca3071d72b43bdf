package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>"gold market" - Google News</title>
<item><title>Gold rallies as dollar weakens</title></item>
<item><title>  </title></item>
<item><title>Central banks keep buying bullion</title></item>
<item><title>Gold slips after strong jobs data</title></item>
</channel></rss>`

func TestRSSSource_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	src := NewRSSSource(srv.URL, "")
	titles, err := src.Search(context.Background(), "gold market", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "gold market" {
		t.Errorf("expected query %q, got %q", "gold market", gotQuery)
	}
	want := []string{"Gold rallies as dollar weakens", "Central banks keep buying bullion"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d titles, got %d: %v", len(want), len(titles), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("title %d: expected %q, got %q", i, want[i], titles[i])
		}
	}
}

func TestRSSSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewRSSSource(srv.URL, "").Search(context.Background(), "gold", 5); err == nil {
		t.Error("expected error for non-200 feed response")
	}
}
