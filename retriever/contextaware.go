package retriever

import (
	"context"
	"strconv"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// retrieveContextAware runs basic retrieval (including reranking when a
// reranker is configured), then attaches adjacent chunks (same source,
// contiguous chunk index) as non-scored context. Adjacency is resolved
// within a wider pool from the same search, so a hit whose neighbors
// did not surface, or whose metadata lacks chunk indices, degrades to
// the hit alone.
func (e *Engine) retrieveContextAware(ctx context.Context, query string, decision schema.StrategyDecision, collection string, topK int, threshold float64) ([]schema.SearchResult, error) {
	window := int(decision.Params["context_window"])
	if window <= 0 {
		window = 1
	}

	pool, err := e.search(ctx, query, collection, topK*3, 0)
	if err != nil {
		return nil, err
	}

	// Index the pool by (source, chunk index) for adjacency lookup.
	type chunkKey struct {
		source string
		index  int
	}
	byChunk := make(map[chunkKey]schema.Document, len(pool))
	for _, c := range pool {
		src, idx, ok := chunkPosition(c.Document)
		if !ok {
			continue
		}
		byChunk[chunkKey{src, idx}] = c.Document
	}

	hits := make([]schema.SearchResult, 0, topK)
	for _, c := range pool {
		if threshold > 0 && c.Similarity < threshold {
			continue
		}
		hits = append(hits, c)
		if len(hits) >= topK {
			break
		}
	}

	if e.Reranker != nil {
		reranked, err := e.Reranker.Rerank(ctx, query, hits, topK)
		if err == nil {
			hits = reranked
		} else {
			logger.Warnf("retrieve: context rerank failed, keeping similarity order: %v", err)
		}
	}

	// Context is attached after reranking so ordering reflects the final
	// relevance and neighbors ride along with their hit.
	for i := range hits {
		src, idx, ok := chunkPosition(hits[i].Document)
		if !ok {
			continue
		}
		for off := -window; off <= window; off++ {
			if off == 0 {
				continue
			}
			if adj, found := byChunk[chunkKey{src, idx + off}]; found {
				hits[i].Context = append(hits[i].Context, adj)
			}
		}
	}
	return hits, nil
}

// chunkPosition extracts (source, chunk index) from document metadata.
func chunkPosition(doc schema.Document) (string, int, bool) {
	if doc.Metadata == nil {
		return "", 0, false
	}
	src := doc.Metadata["source"]
	if src == "" {
		return "", 0, false
	}
	raw, ok := doc.Metadata["chunk_index"]
	if !ok {
		return "", 0, false
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, false
	}
	return src, idx, true
}
