package retriever

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// retrieveHybrid blends semantic similarity with an independent keyword
// ranking over the same candidate pool:
// combined = w*semantic + (1-w)*normalizedKeywordRank.
func (e *Engine) retrieveHybrid(ctx context.Context, query string, decision schema.StrategyDecision, collection string, topK int, threshold float64) ([]schema.SearchResult, error) {
	sw := decision.Params["semantic_weight"]
	if sw <= 0 {
		sw = 0.7
	}
	pool, err := e.search(ctx, query, collection, topK*2, threshold)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return pool, nil
	}

	// Keyword rank over the pool: position in the lexical ordering, not
	// the raw lexical score, so the two signals share a [0,1] scale.
	rank := keywordRanks(query, pool)
	n := float64(len(pool))
	for i := range pool {
		keywordComponent := 1 - float64(rank[i])/n
		pool[i].Score = sw*pool[i].Similarity + (1-sw)*keywordComponent
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })
	if len(pool) > topK {
		pool = pool[:topK]
	}
	return pool, nil
}

// keywordRanks returns each candidate's position in a BM25-style
// lexical ordering (0 = best lexical match).
func keywordRanks(query string, pool []schema.SearchResult) []int {
	scores := make([]float64, len(pool))
	avgLen := 0.0
	lens := make([]float64, len(pool))
	for i, c := range pool {
		lens[i] = float64(len(strings.Fields(c.Document.Content)))
		avgLen += lens[i]
	}
	if len(pool) > 0 {
		avgLen /= float64(len(pool))
	}
	if avgLen == 0 {
		avgLen = 1
	}

	terms := queryTerms(query)
	// df per term over the pool, for an IDF weight.
	df := make(map[string]int, len(terms))
	docTokens := make([]map[string]int, len(pool))
	for i, c := range pool {
		docTokens[i] = termCounts(c.Document.Content)
		for _, t := range terms {
			if docTokens[i][t] > 0 {
				df[t]++
			}
		}
	}

	const k1, b = 1.2, 0.75
	n := float64(len(pool))
	for i := range pool {
		s := 0.0
		for _, t := range terms {
			tf := float64(docTokens[i][t])
			if tf == 0 {
				continue
			}
			idf := math.Log(1 + (n-float64(df[t])+0.5)/(float64(df[t])+0.5))
			s += idf * (tf * (k1 + 1)) / (tf + k1*(1-b+b*lens[i]/avgLen))
		}
		scores[i] = s
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	ranks := make([]int, len(pool))
	for pos, idx := range order {
		ranks[idx] = pos
	}
	return ranks
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, w := range fields {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

func termCounts(content string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(content)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 2 {
			counts[w]++
		}
	}
	return counts
}
