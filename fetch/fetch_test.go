package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mempirate/docparser/cache"
)

func TestFetchCachesResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Declared charset is ignored, the body is taken as UTF-8.
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>Статус</p>"))
	}))
	defer srv.Close()

	c := NewClient(cache.NewMemoryCache())
	ctx := context.Background()

	first, err := c.Fetch(ctx, srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache {
		t.Error("first fetch should not come from cache")
	}
	if first.Text() != "<p>Статус</p>" {
		t.Errorf("unexpected body: %q", first.Text())
	}

	second, err := c.Fetch(ctx, srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache {
		t.Error("second fetch should come from cache")
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}

	if err := c.ClearCache(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Fetch(ctx, srv.URL); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected a network round trip after clear, got %d requests", hits.Load())
	}
}

func TestFetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "not found", url: srv.URL + "/missing"},
		{name: "connection refused", url: closedURL},
		{name: "malformed url", url: "http://%zz"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewClient(cache.NewMemoryCache())
			resp, err := c.Fetch(context.Background(), test.url)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !IsFetchError(err) {
				t.Errorf("expected a fetch error, got %v", err)
			}
			if resp != nil {
				t.Error("expected no response")
			}
			if c.cache.Len() != 0 {
				t.Error("failed responses must not be cached")
			}
		})
	}
}

func TestDocumentSetsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="pep-0001/">PEP 1</a></body></html>`))
	}))
	defer srv.Close()

	doc, err := Document(context.Background(), NewClient(nil), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}

	if doc.Url == nil || doc.Url.String() != srv.URL+"/" {
		t.Errorf("unexpected document URL: %v", doc.Url)
	}
	if doc.Find("a").Text() != "PEP 1" {
		t.Errorf("unexpected anchor text: %q", doc.Find("a").Text())
	}
}
