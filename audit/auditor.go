package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/schema"
	"github.com/ruchit2005/Pran-Protocol/strategy"
)

// Judge answers "can these candidates answer the query". Failures and
// malformed output must be recovered as a positive judgment: blocking a
// healthcare query on a parsing bug is unacceptable.
type Judge interface {
	CanAnswer(ctx context.Context, query string, candidates []schema.SearchResult) (bool, float64, error)
}

// Auditor validates a retrieval outcome with cheap heuristics plus one
// judgment call, and suggests a fallback strategy when the set fails.
type Auditor struct {
	Judge    Judge
	Selector *strategy.Selector
	Cfg      config.AuditConfig
}

// NewAuditor builds an auditor from configuration.
func NewAuditor(cfg config.AuditConfig, judge Judge, sel *strategy.Selector) *Auditor {
	return &Auditor{Judge: judge, Selector: sel, Cfg: cfg}
}

// Validate judges one retrieval outcome. It never returns an error: an
// unreachable judge degrades to heuristics alone.
func (a *Auditor) Validate(ctx context.Context, query string, outcome schema.RetrievalOutcome) schema.ValidationVerdict {
	issues := a.collectIssues(outcome.Candidates)

	if a.Cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.Cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	positive, confidence := true, 0.5
	if a.Judge != nil {
		ok, conf, err := a.Judge.CanAnswer(ctx, query, topN(outcome.Candidates, 3))
		if err != nil {
			logger.Warnf("audit: judgment call failed, accepting by default: %v", err)
		} else {
			positive, confidence = ok, conf
		}
	}

	maxIssues := a.Cfg.MaxIssues
	if maxIssues <= 0 {
		maxIssues = 2
	}
	verdict := schema.ValidationVerdict{
		IsValid:    positive && len(issues) < maxIssues,
		Confidence: confidence,
		Issues:     issues,
	}
	if !verdict.IsValid && a.Selector != nil {
		verdict.SuggestedFallback = a.Selector.Fallback(outcome.StrategyUsed.Name)
	}
	metrics.IncAuditVerdict(verdict.IsValid)
	logger.Debugf("audit: valid=%v issues=%d confidence=%.2f", verdict.IsValid, len(issues), confidence)
	return verdict
}

// collectIssues applies the sparse-set heuristics, each contributing an
// issue string.
func (a *Auditor) collectIssues(candidates []schema.SearchResult) []string {
	var issues []string

	minCandidates := a.Cfg.MinCandidates
	if minCandidates <= 0 {
		minCandidates = 2
	}
	if len(candidates) < minCandidates {
		issues = append(issues, fmt.Sprintf("only %d candidate(s) retrieved", len(candidates)))
	}

	if len(candidates) > 0 {
		avgTh := a.Cfg.AvgSimilarity
		if avgTh <= 0 {
			avgTh = 0.45
		}
		sum := 0.0
		for _, c := range candidates {
			sum += c.Similarity
		}
		avg := sum / float64(len(candidates))
		if avg < avgTh {
			issues = append(issues, fmt.Sprintf("average similarity %.2f below %.2f", avg, avgTh))
		}
	}

	if len(candidates) > 3 {
		sources := make(map[string]bool)
		for _, c := range candidates {
			sources[c.Document.Metadata["source"]] = true
		}
		if len(sources) == 1 {
			issues = append(issues, "all candidates from a single source")
		}
	}

	return issues
}

func topN(in []schema.SearchResult, n int) []schema.SearchResult {
	if len(in) > n {
		return in[:n]
	}
	return in
}
