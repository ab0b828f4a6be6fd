package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

func init() { logger.Disable() }

func candidates() []schema.SearchResult {
	return []schema.SearchResult{
		{Document: schema.Document{ID: "a", Content: "alpha"}, Similarity: 0.9, Score: 0.9},
		{Document: schema.Document{ID: "b", Content: "beta"}, Similarity: 0.8, Score: 0.8},
		{Document: schema.Document{ID: "c", Content: "gamma"}, Similarity: 0.7, Score: 0.7},
	}
}

func TestModelReranker_Rerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string   `json:"query"`
			Documents []string `json:"documents"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		// reversed order with descending scores
		type item struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		}
		out := struct {
			Results []item `json:"results"`
		}{}
		for i := len(req.Documents) - 1; i >= 0; i-- {
			out.Results = append(out.Results, item{Index: i, RelevanceScore: float64(i + 1)})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	rr := &ModelReranker{Endpoint: srv.URL}
	out, err := rr.Rerank(context.Background(), "q", candidates(), 2)
	if err != nil {
		t.Fatalf("rerank error: %v", err)
	}
	if len(out) != 2 || out[0].Document.ID != "c" {
		t.Fatalf("unexpected order: %+v", out)
	}
	if !out[0].Reranked || out[0].RerankScore != 3 {
		t.Fatalf("rerank score not recorded: %+v", out[0])
	}
	if out[0].Similarity != 0.7 {
		t.Fatalf("original similarity must survive: %+v", out[0])
	}
}

func TestModelReranker_Empty(t *testing.T) {
	rr := &ModelReranker{Endpoint: "http://127.0.0.1:1/none"}
	out, err := rr.Rerank(context.Background(), "q", nil, 5)
	if err != nil || len(out) != 0 {
		t.Fatalf("empty input: out=%v err=%v", out, err)
	}
}

func TestModelReranker_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rr := &ModelReranker{Endpoint: srv.URL}
	out, err := rr.Rerank(context.Background(), "q", candidates(), 2)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if len(out) != 2 || out[0].Document.ID != "a" {
		t.Fatalf("fallback must keep input order truncated: %+v", out)
	}
}

func TestModelReranker_UnreachableFallsBack(t *testing.T) {
	rr := &ModelReranker{Endpoint: "http://127.0.0.1:1/rerank"}
	out, err := rr.Rerank(context.Background(), "q", candidates(), 0)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("fallback must keep all candidates: %+v", out)
	}
}

func TestNewFromConfig(t *testing.T) {
	if rr := NewFromConfig(config.RerankConfig{Enable: false}, nil); rr != nil {
		t.Fatal("disabled rerank must return nil")
	}
	if rr := NewFromConfig(config.RerankConfig{Enable: true}, nil); rr != nil {
		t.Fatal("enabled rerank without endpoint must return nil")
	}
	if rr := NewFromConfig(config.RerankConfig{Enable: true, Endpoint: "http://x/rerank"}, nil); rr == nil {
		t.Fatal("configured rerank must not be nil")
	}
}
