package orchestrator

import (
	"context"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/retriever"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// retrieveWithAudit runs one domain retrieval, validates it, and
// retries exactly once with the auditor's suggested fallback when the
// set is rejected. The better of the two sets wins: a fallback that
// also fails validation does not discard the original candidates.
func (o *Orchestrator) retrieveWithAudit(ctx context.Context, text, label string, domain config.DomainConfig, trace *metrics.RequestTrace) schema.RetrievalOutcome {
	decision := o.Selector.Select(text)
	opts := o.domainOptions(label, domain)

	candidates, err := o.Engine.Retrieve(ctx, text, decision, opts)
	if err != nil {
		logger.Warnf("orchestrator: retrieval failed for %s: %v", label, err)
		candidates = nil
	}
	outcome := schema.RetrievalOutcome{Candidates: candidates, StrategyUsed: decision}

	if o.Auditor == nil {
		return outcome
	}
	verdict := o.Auditor.Validate(ctx, text, outcome)
	outcome.Validation = &verdict
	trace.SetAuditVerdict(verdict.IsValid)
	if o.Feedback != nil {
		o.Feedback.Record(label, verdict.IsValid)
	}
	if verdict.IsValid || verdict.SuggestedFallback == nil {
		return outcome
	}

	fb := *verdict.SuggestedFallback
	trace.AddFallback(fb.Name)
	retried, err := o.Engine.Retrieve(ctx, text, fb, opts)
	if err != nil {
		logger.Warnf("orchestrator: fallback retrieval failed for %s: %v", label, err)
		return outcome
	}
	retry := schema.RetrievalOutcome{Candidates: retried, StrategyUsed: fb}
	retryVerdict := o.Auditor.Validate(ctx, text, retry)
	retry.Validation = &retryVerdict
	if o.Feedback != nil {
		o.Feedback.Record(label, retryVerdict.IsValid)
	}
	if retryVerdict.IsValid || len(retried) > len(outcome.Candidates) {
		trace.SetAuditVerdict(retryVerdict.IsValid)
		return retry
	}
	return outcome
}

// domainOptions resolves per-domain retrieval scope, widened by the
// feedback tracker when the domain has been failing validation.
func (o *Orchestrator) domainOptions(label string, domain config.DomainConfig) retriever.Options {
	topK := domain.TopK
	if topK <= 0 {
		topK = o.Cfg.Pipeline.Retrieval.TopK
	}
	if o.Feedback != nil {
		topK = o.Feedback.AdjustTopK(label, topK)
	}
	return retriever.Options{
		Collection: domain.Collection,
		TopK:       topK,
		Threshold:  domain.Threshold,
	}
}
