package retriever

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/embedding"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/rerank"
	"github.com/ruchit2005/Pran-Protocol/schema"
	"github.com/ruchit2005/Pran-Protocol/strategy"
	"github.com/ruchit2005/Pran-Protocol/vectordb"
)

// Engine executes one retrieval strategy against the similarity store.
// It is safe for concurrent use; all state is injected and read-only.
type Engine struct {
	Embed    embedding.Provider
	Store    vectordb.VectorStoreProvider
	Reranker rerank.Reranker
	Cfg      config.RetrievalConfig
}

// Options scope one retrieval call to a knowledge domain.
type Options struct {
	Collection string
	TopK       int
	Threshold  float64
}

// Retrieve dispatches on the decision's strategy name. Store
// unavailability propagates as an error; an empty result set does not.
func (e *Engine) Retrieve(ctx context.Context, query string, decision schema.StrategyDecision, opts Options) ([]schema.SearchResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = e.Cfg.TopK
	}
	if topK <= 0 {
		topK = 5
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = e.Cfg.SimilarityThreshold
	}

	if e.Cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.Cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	start := time.Now()

	var (
		out []schema.SearchResult
		err error
	)
	switch decision.Name {
	case strategy.MMR:
		out, err = e.retrieveMMR(ctx, query, decision, opts.Collection, topK)
	case strategy.Hybrid:
		out, err = e.retrieveHybrid(ctx, query, decision, opts.Collection, topK, threshold)
	case strategy.ContextAware:
		out, err = e.retrieveContextAware(ctx, query, decision, opts.Collection, topK, threshold)
	case strategy.Basic, "":
		out, err = e.retrieveBasic(ctx, query, opts.Collection, topK, threshold)
	default:
		return nil, fmt.Errorf("unknown retrieval strategy: %s", decision.Name)
	}
	if err != nil {
		return nil, err
	}
	metrics.ObserveRetrieval(decision.Name, start, len(out))
	logger.Debugf("retrieve: strategy=%s collection=%s results=%d", decision.Name, opts.Collection, len(out))
	return out, nil
}

// retrieveBasic fetches an over-sized neighbor pool, drops weak hits,
// reranks when enabled and truncates to topK.
func (e *Engine) retrieveBasic(ctx context.Context, query, collection string, topK int, threshold float64) ([]schema.SearchResult, error) {
	mult := 2
	if e.Reranker != nil {
		mult = 3
	}
	pool, err := e.search(ctx, query, collection, topK*mult, threshold)
	if err != nil {
		return nil, err
	}
	if e.Reranker != nil {
		reranked, err := e.Reranker.Rerank(ctx, query, pool, topK)
		if err == nil {
			return reranked, nil
		}
		logger.Warnf("retrieve: rerank failed, keeping similarity order: %v", err)
	}
	if len(pool) > topK {
		pool = pool[:topK]
	}
	return pool, nil
}

// search embeds the query and hits the store once.
func (e *Engine) search(ctx context.Context, query, collection string, topK int, threshold float64) ([]schema.SearchResult, error) {
	vec, err := e.Embed.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	res, err := e.Store.SearchDocs(ctx, vec, &schema.SearchOptions{
		TopK:       topK,
		Threshold:  threshold,
		Collection: collection,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
	return res, nil
}
