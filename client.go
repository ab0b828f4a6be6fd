package pran

import (
	"context"
	"fmt"
	"time"

	"github.com/ruchit2005/Pran-Protocol/agents"
	"github.com/ruchit2005/Pran-Protocol/audit"
	"github.com/ruchit2005/Pran-Protocol/cache"
	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/embedding"
	"github.com/ruchit2005/Pran-Protocol/emergency"
	"github.com/ruchit2005/Pran-Protocol/intent"
	"github.com/ruchit2005/Pran-Protocol/llm"
	"github.com/ruchit2005/Pran-Protocol/orchestrator"
	"github.com/ruchit2005/Pran-Protocol/preprocess"
	"github.com/ruchit2005/Pran-Protocol/rerank"
	"github.com/ruchit2005/Pran-Protocol/retriever"
	"github.com/ruchit2005/Pran-Protocol/schema"
	"github.com/ruchit2005/Pran-Protocol/strategy"
	"github.com/ruchit2005/Pran-Protocol/vectordb"
)

// Client is the engine facade: query preparation, strategy-driven
// retrieval, intent routing, and fully orchestrated answering.
type Client struct {
	cfg *config.Config

	llmProvider llm.Provider
	embed       embedding.Provider
	store       vectordb.VectorStoreProvider

	rewriter   *preprocess.Rewriter
	selector   *strategy.Selector
	engine     *retriever.Engine
	auditor    *audit.Auditor
	feedback   *audit.FeedbackTracker
	classifier *intent.Classifier
	detector   *emergency.Detector
	orch       *orchestrator.Orchestrator

	l1    cache.Cache
	l1TTL time.Duration
}

// New validates the configuration and wires the full pipeline. The
// similarity store connection is established eagerly; everything else
// is lazy.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = config.DefaultPipeline()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llmProvider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	embedProvider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	store, err := vectordb.NewProvider(ctx, cfg.VectorDB)
	if err != nil {
		return nil, fmt.Errorf("connect similarity store: %w", err)
	}

	pl := cfg.Pipeline
	reranker := rerank.NewFromConfig(pl.Rerank, pl.HTTP)

	c := &Client{
		cfg:         cfg,
		llmProvider: llmProvider,
		embed:       embedProvider,
		store:       store,
		rewriter:    &preprocess.Rewriter{LLM: llmProvider, Embed: embedProvider, Cfg: pl.Rewrite},
		selector:    &strategy.Selector{Cfg: pl.Retrieval},
		detector:    emergency.NewDetector(),
		classifier:  intent.NewClassifier(llmProvider, pl.Intent),
	}
	c.engine = &retriever.Engine{Embed: embedProvider, Store: store, Reranker: reranker, Cfg: pl.Retrieval}

	if pl.Audit.Enable {
		c.auditor = audit.NewAuditor(pl.Audit, buildJudge(pl, llmProvider), c.selector)
		c.feedback = audit.NewFeedbackTracker(pl.Feedback)
	}

	if pl.Cache != nil && pl.Cache.Enable {
		ttl := time.Duration(pl.Cache.TTLSeconds) * time.Second
		c.l1 = cache.NewLRU(pl.Cache.MaxEntries, ttl)
		c.l1TTL = ttl
	}

	chat, _ := llmProvider.(llm.ChatProvider)
	registry := agents.BuildRegistry(cfg, chat, pl.Dispatch.ContextTokenBudget)
	c.orch, err = orchestrator.New(cfg, c.detector, c.classifier, c.rewriter,
		c.selector, c.engine, c.auditor, c.feedback, reranker, registry)
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Infof("client: pipeline ready (domains=%d rerank=%v audit=%v)",
		len(cfg.Domains), reranker != nil, pl.Audit.Enable)
	return c, nil
}

func buildJudge(pl *config.PipelineConfig, provider llm.Provider) audit.Judge {
	if pl.Audit.Provider == "http" && pl.Audit.Endpoint != "" {
		return &audit.HTTPJudge{Endpoint: pl.Audit.Endpoint}
	}
	return &audit.LLMJudge{Provider: provider}
}

// Close releases the worker pool and the store connection.
func (c *Client) Close() error {
	if c.orch != nil {
		c.orch.Close()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// PrepareQuery expands and optionally rewrites a raw question.
func (c *Client) PrepareQuery(ctx context.Context, raw string) schema.Query {
	return c.rewriter.Prepare(ctx, raw)
}

// SelectStrategy exposes the strategy decision for a prepared query.
func (c *Client) SelectStrategy(query string) schema.StrategyDecision {
	return c.selector.Select(query)
}

// RetrieveOptions scopes one Retrieve call.
type RetrieveOptions struct {
	Collection string
	TopK       int
	Threshold  float64
	// Strategy forces a named strategy instead of the selector's choice.
	Strategy string
	// Intent attributes audit feedback to a domain.
	Intent string
}

// Retrieve runs the full strategy pipeline for one query: selection,
// retrieval, validation, and at most one fallback retry. Results are
// served from the L1 cache when enabled.
func (c *Client) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (schema.RetrievalOutcome, error) {
	text := c.rewriter.Rewrite(ctx, query)

	decision := c.selector.Select(text)
	if opts.Strategy != "" {
		d, ok := c.selector.ByName(opts.Strategy)
		if !ok {
			return schema.RetrievalOutcome{}, fmt.Errorf("unknown retrieval strategy: %s", opts.Strategy)
		}
		decision = d
	}

	cacheKey := ""
	if c.l1 != nil {
		cacheKey = fmt.Sprintf("%s|%s|%s|%d", opts.Collection, decision.Name, text, opts.TopK)
		if outcome, ok := c.l1.Get(cacheKey); ok {
			logger.Debugf("retrieve: l1 hit for %q", text)
			return outcome, nil
		}
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = c.cfg.Pipeline.Retrieval.TopK
	}
	if c.feedback != nil {
		topK = c.feedback.AdjustTopK(opts.Intent, topK)
	}
	rOpts := retriever.Options{Collection: opts.Collection, TopK: topK, Threshold: opts.Threshold}

	candidates, err := c.engine.Retrieve(ctx, text, decision, rOpts)
	if err != nil {
		return schema.RetrievalOutcome{}, err
	}
	outcome := schema.RetrievalOutcome{Candidates: candidates, StrategyUsed: decision}

	if c.auditor != nil {
		verdict := c.auditor.Validate(ctx, text, outcome)
		outcome.Validation = &verdict
		if c.feedback != nil {
			c.feedback.Record(opts.Intent, verdict.IsValid)
		}
		if !verdict.IsValid && verdict.SuggestedFallback != nil {
			if retried, err := c.engine.Retrieve(ctx, text, *verdict.SuggestedFallback, rOpts); err == nil {
				retry := schema.RetrievalOutcome{Candidates: retried, StrategyUsed: *verdict.SuggestedFallback}
				retryVerdict := c.auditor.Validate(ctx, text, retry)
				retry.Validation = &retryVerdict
				if retryVerdict.IsValid || len(retried) > len(candidates) {
					outcome = retry
				}
			}
		}
	}

	if c.l1 != nil && len(outcome.Candidates) > 0 {
		c.l1.Set(cacheKey, outcome, c.l1TTL)
	}
	return outcome, nil
}

// Classify screens and routes a question without answering it.
func (c *Client) Classify(ctx context.Context, query string) *schema.IntentClassification {
	return c.classifier.Classify(ctx, query)
}

// Answer runs the full orchestration for one question.
func (c *Client) Answer(ctx context.Context, query string) *schema.FusedAnswer {
	return c.orch.Run(ctx, query)
}
