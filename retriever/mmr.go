package retriever

import (
	"context"
	"strings"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// retrieveMMR fetches a 3x candidate pool by similarity and greedily
// builds a diverse result set. Inter-candidate similarity is token-set
// Jaccard over content, a deliberate low-cost diversity proxy that
// avoids a second embedding round-trip.
func (e *Engine) retrieveMMR(ctx context.Context, query string, decision schema.StrategyDecision, collection string, topK int) ([]schema.SearchResult, error) {
	df := decision.Params["diversity_factor"]
	if df <= 0 {
		df = 0.6
	}
	pool, err := e.search(ctx, query, collection, topK*3, 0)
	if err != nil {
		return nil, err
	}
	return mmrSelect(pool, topK, df), nil
}

// mmrSelect greedily picks the candidate maximizing
// df*relevance + (1-df)*(1 - maxSimilarityToSelected). The first pick
// is always the top relevance-scored candidate.
func mmrSelect(pool []schema.SearchResult, topK int, df float64) []schema.SearchResult {
	if len(pool) == 0 {
		return []schema.SearchResult{}
	}
	if topK > len(pool) {
		topK = len(pool)
	}

	tokens := make([]map[string]bool, len(pool))
	for i, c := range pool {
		tokens[i] = contentTokens(c.Document.Content)
	}

	selected := make([]schema.SearchResult, 0, topK)
	selectedIdx := make([]int, 0, topK)
	used := make([]bool, len(pool))

	for len(selected) < topK {
		best := -1
		bestScore := 0.0
		for i := range pool {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, j := range selectedIdx {
				if sim := jaccard(tokens[i], tokens[j]); sim > maxSim {
					maxSim = sim
				}
			}
			score := df*pool[i].Score + (1-df)*(1-maxSim)
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		selectedIdx = append(selectedIdx, best)
		selected = append(selected, pool[best])
	}
	return selected
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func contentTokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}
