package fusion

import (
	"sort"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// DefaultRRFK is the standard reciprocal-rank-fusion damping constant.
const DefaultRRFK = 60

// DedupeMax merges candidate lists, keeping one entry per document ID
// with its highest score. Output is sorted descending by Score.
func DedupeMax(lists ...[]schema.SearchResult) []schema.SearchResult {
	best := make(map[string]schema.SearchResult)
	order := make([]string, 0)
	for _, list := range lists {
		for _, r := range list {
			id := r.Document.ID
			prev, seen := best[id]
			if !seen {
				order = append(order, id)
				best[id] = r
				continue
			}
			if r.Score > prev.Score {
				best[id] = r
			}
		}
	}
	out := make([]schema.SearchResult, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// RRF fuses ranked lists by reciprocal rank: each document scores the
// sum of 1/(k+rank) over the lists that contain it. Document payloads
// come from the first list mentioning the ID.
func RRF(k int, lists ...[]schema.SearchResult) []schema.SearchResult {
	if k <= 0 {
		k = DefaultRRFK
	}
	scores := make(map[string]float64)
	payload := make(map[string]schema.SearchResult)
	order := make([]string, 0)
	for _, list := range lists {
		for rank, r := range list {
			id := r.Document.ID
			if _, seen := payload[id]; !seen {
				payload[id] = r
				order = append(order, id)
			}
			scores[id] += 1.0 / float64(k+rank+1)
		}
	}
	out := make([]schema.SearchResult, 0, len(order))
	for _, id := range order {
		r := payload[id]
		r.Score = scores[id]
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Truncate caps a list at n without copying.
func Truncate(in []schema.SearchResult, n int) []schema.SearchResult {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
