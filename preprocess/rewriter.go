package preprocess

import (
	"context"
	"strings"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/embedding"
	"github.com/ruchit2005/Pran-Protocol/llm"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Rewriter turns a raw question into a better search query: static
// terminology expansion first, then an optional generative rewrite
// guarded against semantic drift. Rewriting never fails the caller.
type Rewriter struct {
	LLM   llm.Provider
	Embed embedding.Provider
	Cfg   config.RewriteConfig
}

const rewritePrompt = `Rewrite the following health question as a concise search query for a medical knowledge base.
Keep every medical term, add no new conditions, and answer with the rewritten query only.

Question: %QUERY%`

var vagueMarkers = []string{"what is", "tell me", "i have", "i feel", "help me", "can you"}

// Prepare expands and (when warranted) rewrites the raw text into a
// Query. The cache key is always the raw text.
func (r *Rewriter) Prepare(ctx context.Context, raw string) schema.Query {
	q := schema.Query{Raw: raw, CacheKey: raw}
	rewritten := r.Rewrite(ctx, raw)
	if rewritten != raw {
		q.Rewritten = rewritten
	}
	return q
}

// Rewrite returns the prepared search text for a raw query. The result
// is either the expanded text or a drift-checked generative rewrite of
// it; on any upstream failure the expanded text is returned.
func (r *Rewriter) Rewrite(ctx context.Context, raw string) string {
	expanded := ExpandTerminology(raw)
	if !r.Cfg.Enable || r.LLM == nil {
		return expanded
	}

	want, reason := r.shouldRewrite(expanded)
	if !want {
		logger.Debugf("rewrite: skipped (%s)", reason)
		metrics.IncRewriteDecision("skipped")
		return expanded
	}

	if r.Cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.Cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	prompt := strings.Replace(rewritePrompt, "%QUERY%", expanded, 1)
	out, err := r.LLM.GenerateCompletion(ctx, prompt)
	if err != nil {
		logger.Warnf("rewrite: generation failed, keeping expanded query: %v", err)
		metrics.IncRewriteDecision("failed")
		return expanded
	}
	candidate := strings.TrimSpace(strings.Trim(strings.TrimSpace(out), `"`))
	if candidate == "" {
		metrics.IncRewriteDecision("failed")
		return expanded
	}

	if r.drifted(ctx, raw, candidate) {
		logger.Warnf("rewrite: discarded as drift: %q -> %q", raw, candidate)
		metrics.IncRewriteDecision("drift_discarded")
		return expanded
	}
	logger.Debugf("rewrite: %q -> %q (%s)", raw, candidate, reason)
	metrics.IncRewriteDecision("rewritten")
	return candidate
}

// shouldRewrite applies heuristics over the expanded text.
func (r *Rewriter) shouldRewrite(expanded string) (bool, string) {
	words := strings.Fields(expanded)
	domainTerms := CountDomainTerms(expanded)
	minTerms := r.Cfg.MinDomainTerms
	if minTerms <= 0 {
		minTerms = 3
	}

	if len(words) <= 3 {
		return true, "short query"
	}
	if domainTerms >= minTerms {
		return false, "already precise"
	}
	lower := strings.ToLower(expanded)
	for _, m := range vagueMarkers {
		if strings.Contains(lower, m) {
			return true, "vague phrasing with low domain density"
		}
	}
	if strings.HasSuffix(strings.TrimSpace(expanded), "?") && len(words) >= 8 {
		ratio := float64(domainTerms) / float64(len(words))
		if ratio < 0.3 {
			return true, "long question with low technical ratio"
		}
	}
	return false, "no trigger"
}

// drifted reports whether a rewrite diverged from the original: it is
// drift only when semantic similarity AND lexical overlap both fall
// below their thresholds. An unavailable embedding service keeps the
// rewrite (the lexical check alone decides).
func (r *Rewriter) drifted(ctx context.Context, original, rewritten string) bool {
	overlap := lexicalOverlap(original, rewritten)
	if overlap >= r.Cfg.DriftOverlap {
		return false
	}
	if r.Embed == nil {
		return true
	}
	sim, err := embedding.Similarity(ctx, r.Embed, original, rewritten)
	if err != nil {
		logger.Warnf("rewrite: drift similarity check failed: %v", err)
		return true
	}
	return sim < r.Cfg.DriftSimilarity
}

// lexicalOverlap is the fraction of original tokens present in the
// rewritten text.
func lexicalOverlap(original, rewritten string) float64 {
	orig := tokenSet(original)
	if len(orig) == 0 {
		return 0
	}
	rew := tokenSet(rewritten)
	matched := 0
	for t := range orig {
		if rew[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(orig))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if w != "" {
			set[w] = true
		}
	}
	return set
}
