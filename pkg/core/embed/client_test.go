package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/earningscope/engine/pkg/core/ferr"
)

func TestClient_Encode_OrderPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		vectors := make([][]float64, len(req.Texts))
		for i := range req.Texts {
			vectors[i] = []float64{float64(i), float64(i) + 0.5}
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: vectors, Model: "test-model", Dimension: 2, Count: len(vectors)})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	vectors, err := c.Encode(context.Background(), []string{"a", "b", "c"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	if vectors[1][0] != 1 {
		t.Fatalf("expected order-preserved result, got %v", vectors)
	}
	if c.Dimension() != 2 {
		t.Fatalf("expected dimension 2, got %d", c.Dimension())
	}
}

func TestClient_Encode_TruncatesInput(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req.Texts[0])
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{0}}, Count: 1})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Encode(context.Background(), []string{strings.Repeat("x", 2000)}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLen > EmbedInputCapBytes {
		t.Fatalf("expected input truncated to %d bytes, server saw %d", EmbedInputCapBytes, gotLen)
	}
}

func TestClient_Encode_CountMismatchIsProtocolViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{0}}, Count: 1})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Encode(context.Background(), []string{"a", "b"}, 10)
	if err == nil {
		t.Fatal("expected a protocol violation error for a count mismatch")
	}
	if !ferr.Is(err, ferr.PermanentUpstream) {
		t.Fatalf("expected PermanentUpstream kind, got %v", err)
	}
}

func TestClient_Encode_RetriesOn5xxThenSurfacesTransientUpstream(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, MaxRetries: 2, Backoff: 1})
	_, err := c.Encode(context.Background(), []string{"a"}, 1)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if !ferr.Is(err, ferr.TransientUpstream) {
		t.Fatalf("expected TransientUpstream kind, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
}
