package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSearchQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "api-key" || q.Get("cx") != "cse-id" {
			t.Fatalf("missing credentials: %v", q)
		}
		if q.Get("q") != "capital of france" {
			t.Fatalf("unexpected query %q", q.Get("q"))
		}
		if q.Get("num") != "5" || q.Get("safe") != "active" {
			t.Fatalf("unexpected search options: %v", q)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"title":"Paris","snippet":"The capital of France is Paris.","link":"https://example.org/paris"},
			{"title":"France","snippet":"France is a country in Europe.","link":"https://example.org/france"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("api-key", "cse-id", zap.NewNop())
	client.WithEndpoint(server.URL)

	results, err := client.Search(context.Background(), "capital of france")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Paris" || results[0].URL != "https://example.org/paris" {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestSearchNoItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("api-key", "cse-id", zap.NewNop())
	client.WithEndpoint(server.URL)

	results, err := client.Search(context.Background(), "gibberish")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
