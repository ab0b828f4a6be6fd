package config

// PipelineConfig tunes query preparation, retrieval, validation and
// orchestration. Every empirically-chosen threshold lives here so it can
// be recalibrated without a code change.
type PipelineConfig struct {
	Rewrite   RewriteConfig   `json:"rewrite" yaml:"rewrite"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Rerank    RerankConfig    `json:"rerank" yaml:"rerank"`
	Audit     AuditConfig     `json:"audit" yaml:"audit"`
	Intent    IntentConfig    `json:"intent" yaml:"intent"`
	Dispatch  DispatchConfig  `json:"dispatch" yaml:"dispatch"`
	// HTTP holds global defaults for outbound HTTP calls (reranker,
	// judgment service).
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
	// Cache controls L1 caching of retrieval outcomes.
	Cache *CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Feedback tunes adaptive retrieval widening after invalid audits.
	Feedback *FeedbackConfig `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// RewriteConfig tunes the query preprocessor.
type RewriteConfig struct {
	Enable bool `json:"enable" yaml:"enable"`
	// DriftSimilarity and DriftOverlap gate acceptance of a generative
	// rewrite: a rewrite below BOTH thresholds is discarded as drift.
	DriftSimilarity float64 `json:"drift_similarity,omitempty" yaml:"drift_similarity,omitempty"`
	DriftOverlap    float64 `json:"drift_overlap,omitempty" yaml:"drift_overlap,omitempty"`
	// MinDomainTerms suppresses rewriting when at least this many domain
	// term patterns are already present.
	MinDomainTerms int `json:"min_domain_terms,omitempty" yaml:"min_domain_terms,omitempty"`
	TimeoutMs      int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// RetrievalConfig tunes the retrieval engine.
type RetrievalConfig struct {
	TopK                int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`
	// SemanticWeight blends semantic and keyword scores in the hybrid
	// strategy.
	SemanticWeight float64 `json:"semantic_weight,omitempty" yaml:"semantic_weight,omitempty"`
	// DiversityFactor is the default MMR lambda; comparisons use
	// DiversityFactorComparison.
	DiversityFactor           float64 `json:"diversity_factor,omitempty" yaml:"diversity_factor,omitempty"`
	DiversityFactorComparison float64 `json:"diversity_factor_comparison,omitempty" yaml:"diversity_factor_comparison,omitempty"`
	// ContextWindow is how many adjacent chunks the context-aware
	// strategy attaches on each side.
	ContextWindow int `json:"context_window,omitempty" yaml:"context_window,omitempty"`
	TimeoutMs     int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// RerankConfig tunes the pairwise reranker.
type RerankConfig struct {
	Enable   bool   `json:"enable" yaml:"enable"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TopN     int    `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	// GlobalTopN caps the cross-domain rerank pool in multi-path
	// dispatch.
	GlobalTopN int `json:"global_top_n,omitempty" yaml:"global_top_n,omitempty"`
	TimeoutMs  int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// AuditConfig tunes the result auditor.
type AuditConfig struct {
	Enable bool `json:"enable" yaml:"enable"`
	// Provider: "llm" (default) or "http".
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// MinCandidates flags a result set smaller than this.
	MinCandidates int `json:"min_candidates,omitempty" yaml:"min_candidates,omitempty"`
	// AvgSimilarity flags a result set whose mean similarity falls below.
	AvgSimilarity float64 `json:"avg_similarity,omitempty" yaml:"avg_similarity,omitempty"`
	// MaxIssues is the issue count at which a set is invalid regardless
	// of the judgment call.
	MaxIssues int `json:"max_issues,omitempty" yaml:"max_issues,omitempty"`
	TimeoutMs int `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// IntentConfig tunes the intent router.
type IntentConfig struct {
	// ConfidenceBar is the qualification threshold for a label.
	ConfidenceBar float64 `json:"confidence_bar,omitempty" yaml:"confidence_bar,omitempty"`
	TimeoutMs     int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// DispatchConfig tunes multi-path fan-out.
type DispatchConfig struct {
	// MaxConcurrent caps the worker pool shared by all outbound-calling
	// tasks of one process.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// TaskTimeoutMs bounds one domain task; a timed-out task is excluded
	// from fusion.
	TaskTimeoutMs int `json:"task_timeout_ms,omitempty" yaml:"task_timeout_ms,omitempty"`
	// ContextTokenBudget caps the evidence passed to a generator.
	ContextTokenBudget int `json:"context_token_budget,omitempty" yaml:"context_token_budget,omitempty"`
}

// FeedbackConfig tunes adaptive retrieval widening.
type FeedbackConfig struct {
	Window      int `json:"window,omitempty" yaml:"window,omitempty"`
	InvalidMin  int `json:"invalid_min,omitempty" yaml:"invalid_min,omitempty"`
	TopKStep    int `json:"topk_step,omitempty" yaml:"topk_step,omitempty"`
	TopKMax     int `json:"topk_max,omitempty" yaml:"topk_max,omitempty"`
	CooldownSec int `json:"cooldown_seconds,omitempty" yaml:"cooldown_seconds,omitempty"`
}

// CacheConfig controls the L1 retrieval cache.
type CacheConfig struct {
	Enable     bool `json:"enable,omitempty" yaml:"enable,omitempty"`
	MaxEntries int  `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int  `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// DefaultPipeline returns the default pipeline configuration. Threshold
// defaults mirror the values the system was tuned with.
func DefaultPipeline() *PipelineConfig {
	pc := &PipelineConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *PipelineConfig) applyDefaults() {
	if pc.Rewrite.DriftSimilarity <= 0 {
		pc.Rewrite.DriftSimilarity = 0.4
	}
	if pc.Rewrite.DriftOverlap <= 0 {
		pc.Rewrite.DriftOverlap = 0.2
	}
	if pc.Rewrite.MinDomainTerms <= 0 {
		pc.Rewrite.MinDomainTerms = 3
	}
	if pc.Retrieval.TopK <= 0 {
		pc.Retrieval.TopK = 5
	}
	if pc.Retrieval.SimilarityThreshold <= 0 {
		pc.Retrieval.SimilarityThreshold = 0.3
	}
	if pc.Retrieval.SemanticWeight <= 0 {
		pc.Retrieval.SemanticWeight = 0.7
	}
	if pc.Retrieval.DiversityFactor <= 0 {
		pc.Retrieval.DiversityFactor = 0.6
	}
	if pc.Retrieval.DiversityFactorComparison <= 0 {
		pc.Retrieval.DiversityFactorComparison = 0.7
	}
	if pc.Retrieval.ContextWindow <= 0 {
		pc.Retrieval.ContextWindow = 1
	}
	if pc.Audit.MinCandidates <= 0 {
		pc.Audit.MinCandidates = 2
	}
	if pc.Audit.AvgSimilarity <= 0 {
		pc.Audit.AvgSimilarity = 0.45
	}
	if pc.Audit.MaxIssues <= 0 {
		pc.Audit.MaxIssues = 2
	}
	if pc.Intent.ConfidenceBar <= 0 {
		pc.Intent.ConfidenceBar = 0.6
	}
	if pc.Dispatch.MaxConcurrent <= 0 {
		pc.Dispatch.MaxConcurrent = 16
	}
	if pc.Dispatch.TaskTimeoutMs <= 0 {
		pc.Dispatch.TaskTimeoutMs = 20000
	}
	if pc.Dispatch.ContextTokenBudget <= 0 {
		pc.Dispatch.ContextTokenBudget = 3000
	}
	if pc.Rerank.GlobalTopN <= 0 {
		pc.Rerank.GlobalTopN = 8
	}
}
