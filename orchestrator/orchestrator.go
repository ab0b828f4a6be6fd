package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/ruchit2005/Pran-Protocol/agents"
	"github.com/ruchit2005/Pran-Protocol/audit"
	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/emergency"
	"github.com/ruchit2005/Pran-Protocol/fusion"
	"github.com/ruchit2005/Pran-Protocol/intent"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/preprocess"
	"github.com/ruchit2005/Pran-Protocol/rerank"
	"github.com/ruchit2005/Pran-Protocol/retriever"
	"github.com/ruchit2005/Pran-Protocol/schema"
	"github.com/ruchit2005/Pran-Protocol/strategy"
)

// Orchestrator runs one question end to end: emergency screening,
// safety plus intent classification, per-domain retrieval and
// generation, and fusion into a single answer. It is safe for
// concurrent use; per-request state lives on the stack.
type Orchestrator struct {
	Cfg        *config.Config
	Detector   *emergency.Detector
	Classifier *intent.Classifier
	Rewriter   *preprocess.Rewriter
	Selector   *strategy.Selector
	Engine     *retriever.Engine
	Auditor    *audit.Auditor
	Feedback   *audit.FeedbackTracker
	Reranker   rerank.Reranker
	Registry   *agents.Registry

	pool *ants.Pool
}

// New builds an orchestrator sharing one worker pool across requests.
func New(cfg *config.Config, det *emergency.Detector, cls *intent.Classifier,
	rw *preprocess.Rewriter, sel *strategy.Selector, eng *retriever.Engine,
	aud *audit.Auditor, fb *audit.FeedbackTracker, rr rerank.Reranker,
	reg *agents.Registry) (*Orchestrator, error) {

	size := cfg.Pipeline.Dispatch.MaxConcurrent
	if size <= 0 {
		size = 16
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		Cfg: cfg, Detector: det, Classifier: cls, Rewriter: rw,
		Selector: sel, Engine: eng, Auditor: aud, Feedback: fb,
		Reranker: rr, Registry: reg, pool: pool,
	}, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// blockedText is the refusal shown for unsafe input.
const blockedText = "I can't help with that request. I can answer questions about symptoms, wellness, government health schemes, and finding healthcare."

// task is one per-intent unit of work within a request.
type task struct {
	label   string
	gen     agents.Generator
	domain  config.DomainConfig
	backed  bool
	outcome schema.RetrievalOutcome
	docs    []schema.SearchResult
	resp    schema.AgentResponse
}

// Run answers one question. It always returns an answer, degrading
// rather than erroring when upstream services fail.
func (o *Orchestrator) Run(ctx context.Context, raw string) *schema.FusedAnswer {
	requestID := uuid.NewString()
	trace := metrics.NewRequestTrace(requestID, raw)
	defer trace.Log()

	if hit, term := o.Detector.Detect(raw); hit {
		trace.Emergency = true
		trace.Success = true
		logger.Warnf("orchestrator: emergency fast path (matched %q) request=%s", term, requestID)
		return &schema.FusedAnswer{
			RequestID:      requestID,
			Text:           agents.EmergencyMessage(),
			IntentsCovered: []string{"emergency"},
			Emergency:      true,
		}
	}

	cls := o.Classifier.Classify(ctx, raw)
	trace.Primary = cls.Primary
	if !cls.IsSafe {
		trace.Blocked = true
		trace.Success = true
		return &schema.FusedAnswer{
			RequestID:   requestID,
			Text:        blockedText,
			Blocked:     true,
			BlockReason: cls.SafetyReason,
		}
	}

	labels := o.routedLabels(cls)
	trace.IntentsQualified = labels

	// The rewrite is computed at most once per request regardless of how
	// many domain tasks need it.
	rc := preprocess.NewRewriteCache()
	queryFor := func(ctx context.Context) string {
		return rc.Get(ctx, raw, func(ctx context.Context) string {
			text := o.Rewriter.Rewrite(ctx, raw)
			if text != raw {
				trace.SetRewrite("changed", true)
			} else {
				trace.SetRewrite("unchanged", false)
			}
			return text
		})
	}

	tasks := o.buildTasks(labels)
	trace.TasksDispatched = len(tasks)
	metrics.ObserveFanout(len(tasks))

	o.retrievePhase(ctx, tasks, queryFor, trace)
	o.globalRerank(ctx, tasks, raw, trace)
	o.generatePhase(ctx, tasks, raw)

	return o.fuse(ctx, requestID, raw, tasks, trace)
}

// routedLabels applies the confidence bar and small-talk suppression: a
// request that qualifies for any clinical domain never also chats.
func (o *Orchestrator) routedLabels(cls *schema.IntentClassification) []string {
	bar := o.Cfg.Pipeline.Intent.ConfidenceBar
	labels := cls.Qualifying(bar)
	if len(labels) == 0 {
		labels = []string{cls.Primary}
	}
	if len(labels) > 1 {
		kept := labels[:0]
		for _, l := range labels {
			if l == intent.LabelSmallTalk {
				continue
			}
			kept = append(kept, l)
		}
		labels = kept
	}
	return labels
}

func (o *Orchestrator) buildTasks(labels []string) []*task {
	tasks := make([]*task, 0, len(labels))
	for _, label := range labels {
		gen, err := o.Registry.Get(label)
		if err != nil {
			logger.Errorf("orchestrator: %v", err)
			continue
		}
		domain, ok := o.Cfg.DomainByIntent(label)
		t := &task{label: label, gen: gen, domain: domain}
		t.backed = gen.StoreBacked() && ok && domain.Collection != ""
		tasks = append(tasks, t)
	}
	return tasks
}

// retrievePhase fetches evidence for every store-backed task
// concurrently. Retrieval failures leave the task generation-only.
func (o *Orchestrator) retrievePhase(ctx context.Context, tasks []*task, queryFor func(context.Context) string, trace *metrics.RequestTrace) {
	var wg sync.WaitGroup
	for _, t := range tasks {
		if !t.backed {
			continue
		}
		t := t
		wg.Add(1)
		run := func() {
			defer wg.Done()
			text := queryFor(ctx)
			t.outcome = o.retrieveWithAudit(ctx, text, t.label, t.domain, trace)
			t.docs = t.outcome.Candidates
		}
		if err := o.pool.Submit(run); err != nil {
			run()
		}
	}
	wg.Wait()

	if trace.Strategy == "" {
		for _, t := range tasks {
			if t.backed && t.outcome.StrategyUsed.Name != "" {
				trace.Strategy = t.outcome.StrategyUsed.Name
				break
			}
		}
	}
}

// globalRerank pools candidates across store-backed domains, reranks
// them once against the raw question, and hands each task back its own
// documents in global order. Runs only when at least two domains
// retrieved and a reranker is configured.
func (o *Orchestrator) globalRerank(ctx context.Context, tasks []*task, raw string, trace *metrics.RequestTrace) {
	if o.Reranker == nil {
		return
	}
	var lists [][]schema.SearchResult
	for _, t := range tasks {
		if t.backed && len(t.docs) > 0 {
			lists = append(lists, t.docs)
		}
	}
	if len(lists) < 2 {
		return
	}

	pooled := fusion.DedupeMax(lists...)
	trace.CandidatesPooled = len(pooled)
	topN := o.Cfg.Pipeline.Rerank.GlobalTopN
	reranked, err := o.Reranker.Rerank(ctx, raw, pooled, topN)
	if err != nil || len(reranked) == 0 {
		return
	}
	trace.GlobalRerank = true

	for _, t := range tasks {
		if !t.backed {
			continue
		}
		var kept []schema.SearchResult
		for _, r := range reranked {
			if ownsDoc(t.docs, r.Document.ID) {
				kept = append(kept, r)
			}
		}
		// A domain whose evidence all fell out of the global top keeps
		// its local ordering.
		if len(kept) > 0 {
			t.docs = kept
		}
	}
}

func ownsDoc(docs []schema.SearchResult, id string) bool {
	for _, d := range docs {
		if d.Document.ID == id {
			return true
		}
	}
	return false
}

// generatePhase runs every task's generator concurrently under the task
// timeout. A failed or timed-out task carries its error into fusion
// instead of sinking the request.
func (o *Orchestrator) generatePhase(ctx context.Context, tasks []*task, raw string) {
	timeout := time.Duration(o.Cfg.Pipeline.Dispatch.TaskTimeoutMs) * time.Millisecond
	var wg sync.WaitGroup
	for _, t := range tasks {
		t := t
		wg.Add(1)
		run := func() {
			defer wg.Done()
			tctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			text, err := t.gen.Run(tctx, raw, t.docs)
			t.resp = schema.AgentResponse{Intent: t.label, Text: text, UsedDocuments: t.docs}
			if err != nil {
				t.resp.Err = err.Error()
				t.resp.Text = ""
				logger.Warnf("orchestrator: agent %s failed: %v", t.label, err)
			}
		}
		if err := o.pool.Submit(run); err != nil {
			run()
		}
	}
	wg.Wait()
}
