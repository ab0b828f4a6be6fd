package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/schema"
	"github.com/ruchit2005/Pran-Protocol/strategy"
)

func init() { logger.Disable() }

type fakeJudge struct {
	ok   bool
	conf float64
	err  error
}

func (f *fakeJudge) CanAnswer(context.Context, string, []schema.SearchResult) (bool, float64, error) {
	return f.ok, f.conf, f.err
}

func cand(id string, sim float64, source string) schema.SearchResult {
	meta := map[string]string{}
	if source != "" {
		meta["source"] = source
	}
	return schema.SearchResult{
		Document:   schema.Document{ID: id, Content: "passage " + id, Metadata: meta},
		Similarity: sim,
		Score:      sim,
	}
}

func newAuditor(j Judge) *Auditor {
	return NewAuditor(config.AuditConfig{Enable: true, MinCandidates: 2, AvgSimilarity: 0.45, MaxIssues: 2}, j, &strategy.Selector{})
}

func TestValidate_HealthySet(t *testing.T) {
	a := newAuditor(&fakeJudge{ok: true, conf: 0.9})
	outcome := schema.RetrievalOutcome{
		Candidates:   []schema.SearchResult{cand("a", 0.8, "s1"), cand("b", 0.7, "s2"), cand("c", 0.6, "s1")},
		StrategyUsed: schema.StrategyDecision{Name: strategy.Basic},
	}
	v := a.Validate(context.Background(), "q", outcome)
	if !v.IsValid || len(v.Issues) != 0 || v.SuggestedFallback != nil {
		t.Fatalf("healthy set flagged: %+v", v)
	}
}

func TestValidate_SparseSet(t *testing.T) {
	a := newAuditor(&fakeJudge{ok: true, conf: 0.9})
	outcome := schema.RetrievalOutcome{
		Candidates:   []schema.SearchResult{cand("a", 0.2, "s1")},
		StrategyUsed: schema.StrategyDecision{Name: strategy.Basic},
	}
	v := a.Validate(context.Background(), "q", outcome)
	// too few candidates and low average similarity: two issues
	if v.IsValid || len(v.Issues) != 2 {
		t.Fatalf("sparse set accepted: %+v", v)
	}
	if v.SuggestedFallback == nil || v.SuggestedFallback.Name != strategy.Hybrid {
		t.Fatalf("want hybrid fallback after basic, got %+v", v.SuggestedFallback)
	}
}

func TestValidate_SingleSourceIssue(t *testing.T) {
	a := newAuditor(&fakeJudge{ok: true, conf: 0.9})
	outcome := schema.RetrievalOutcome{
		Candidates: []schema.SearchResult{
			cand("a", 0.8, "s1"), cand("b", 0.7, "s1"), cand("c", 0.6, "s1"), cand("d", 0.6, "s1"),
		},
	}
	v := a.Validate(context.Background(), "q", outcome)
	if len(v.Issues) != 1 {
		t.Fatalf("want single-source issue, got %+v", v.Issues)
	}
	// one issue is below MaxIssues, set stays valid
	if !v.IsValid {
		t.Fatalf("one issue should not invalidate: %+v", v)
	}
}

func TestValidate_NegativeJudgment(t *testing.T) {
	a := newAuditor(&fakeJudge{ok: false, conf: 0.8})
	outcome := schema.RetrievalOutcome{
		Candidates:   []schema.SearchResult{cand("a", 0.8, "s1"), cand("b", 0.7, "s2"), cand("c", 0.6, "s3")},
		StrategyUsed: schema.StrategyDecision{Name: strategy.Hybrid},
	}
	v := a.Validate(context.Background(), "q", outcome)
	if v.IsValid {
		t.Fatalf("negative judgment must invalidate: %+v", v)
	}
	if v.SuggestedFallback == nil || v.SuggestedFallback.Name != strategy.MMR {
		t.Fatalf("want mmr fallback after hybrid, got %+v", v.SuggestedFallback)
	}
}

func TestValidate_JudgeFailureAcceptsByDefault(t *testing.T) {
	a := newAuditor(&fakeJudge{err: fmt.Errorf("judge down")})
	outcome := schema.RetrievalOutcome{
		Candidates: []schema.SearchResult{cand("a", 0.8, "s1"), cand("b", 0.7, "s2")},
	}
	v := a.Validate(context.Background(), "q", outcome)
	if !v.IsValid {
		t.Fatalf("unreachable judge must fail open: %+v", v)
	}
}

func TestValidate_ChainExhausted(t *testing.T) {
	a := newAuditor(&fakeJudge{ok: false, conf: 0.9})
	outcome := schema.RetrievalOutcome{
		StrategyUsed: schema.StrategyDecision{Name: strategy.ContextAware},
	}
	v := a.Validate(context.Background(), "q", outcome)
	if v.IsValid {
		t.Fatal("empty set with negative judgment must be invalid")
	}
	if v.SuggestedFallback != nil {
		t.Fatalf("context_aware is the last strategy, no fallback expected: %+v", v.SuggestedFallback)
	}
}
