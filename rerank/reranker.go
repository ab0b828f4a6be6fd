package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/httpx"
	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Reranker reorders candidates with a pairwise relevance model. Every
// implementation must be safe on an empty list and must degrade to the
// input order (truncated to topN) when the model is unavailable.
type Reranker interface {
	Rerank(ctx context.Context, query string, in []schema.SearchResult, topN int) ([]schema.SearchResult, error)
}

// ModelReranker calls a cross-encoder service (BGE-reranker, Cohere
// rerank and compatible APIs) that scores (query, document) pairs.
type ModelReranker struct {
	Endpoint string
	Model    string
	APIKey   string
	Client   *httpx.Client
	Timeout  time.Duration
}

// NewFromConfig builds the configured reranker, or nil when disabled.
func NewFromConfig(cfg config.RerankConfig, httpCfg *config.HTTPClientConfig) Reranker {
	if !cfg.Enable || cfg.Endpoint == "" {
		return nil
	}
	timeout := 2 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &ModelReranker{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Client:   httpx.NewFromConfig(httpCfg),
		Timeout:  timeout,
	}
}

type modelRerankReq struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model,omitempty"`
	TopN      int      `json:"top_n,omitempty"`
}

type modelRerankResp struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (m *ModelReranker) Rerank(ctx context.Context, query string, in []schema.SearchResult, topN int) ([]schema.SearchResult, error) {
	if len(in) == 0 {
		return []schema.SearchResult{}, nil
	}
	if m.Endpoint == "" {
		return truncate(in, topN), nil
	}
	start := time.Now()

	documents := make([]string, len(in))
	for i, r := range in {
		documents[i] = r.Document.Content
	}
	bs, _ := json.Marshal(modelRerankReq{
		Query: query, Documents: documents, Model: m.Model, TopN: topN,
	})

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(bs))
	if err != nil {
		logger.Warnf("rerank: failed to create request: %v", err)
		return truncate(in, topN), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", m.APIKey))
	}

	if m.Client == nil {
		m.Client = httpx.NewFromConfig(nil)
	}
	resp, err := m.Client.Do(httpReq)
	if err != nil {
		logger.Warnf("rerank: request failed: %v, using original order", err)
		return truncate(in, topN), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnf("rerank: server returned status %d, using original order", resp.StatusCode)
		return truncate(in, topN), nil
	}
	var rr modelRerankResp
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil || len(rr.Results) == 0 {
		logger.Warnf("rerank: unusable response (err=%v results=%d), using original order", err, len(rr.Results))
		return truncate(in, topN), nil
	}

	// The original similarity stays on the candidate so both scores are
	// observable downstream.
	out := make([]schema.SearchResult, 0, len(rr.Results))
	for _, r := range rr.Results {
		if r.Index < 0 || r.Index >= len(in) {
			continue
		}
		c := in[r.Index]
		c.RerankScore = r.RelevanceScore
		c.Reranked = true
		c.Score = r.RelevanceScore
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	out = truncate(out, topN)

	metrics.ObserveRerank(start, len(out))
	return out, nil
}

func truncate(in []schema.SearchResult, topN int) []schema.SearchResult {
	if topN > 0 && len(in) > topN {
		return append([]schema.SearchResult(nil), in[:topN]...)
	}
	return in
}
