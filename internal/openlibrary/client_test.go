package openlibrary

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "dune frank herbert" {
			t.Errorf("query = %q, want %q", got, "dune frank herbert")
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit = %q, want 20", got)
		}
		fmt.Fprint(w, `{"docs":[{"title":"Dune","author_name":["Frank Herbert"],"publisher":["Chilton Books"],"first_publish_year":1965}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	docs, err := client.Search(context.Background(), "dune frank herbert", 20)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if docs[0].Title != "Dune" {
		t.Errorf("Title = %q, want Dune", docs[0].Title)
	}
	if docs[0].FirstPublishYear != 1965 {
		t.Errorf("FirstPublishYear = %d, want 1965", docs[0].FirstPublishYear)
	}
}

func TestSearchMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"docs":[{"title":"Sparse"}]}`)
	}))
	defer server.Close()

	docs, err := NewClient(server.URL, 5*time.Second).Search(context.Background(), "sparse", 20)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if docs[0].FirstPublishYear != 0 || docs[0].AuthorName != nil {
		t.Errorf("absent fields should decode to zero values, got %+v", docs[0])
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, 5*time.Second).Search(context.Background(), "anything", 20); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
