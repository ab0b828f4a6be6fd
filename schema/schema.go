package schema

// Document is one stored passage with its source metadata.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is one retrieved candidate. Similarity always holds the
// score assigned by the similarity store; RerankScore is populated only
// when a rerank pass ran. Score mirrors the last score assigned, so a
// result list is always sorted descending by Score.
type SearchResult struct {
	Document   Document `json:"document"`
	Similarity float64  `json:"similarity"`
	RerankScore float64 `json:"rerank_score,omitempty"`
	Reranked   bool     `json:"reranked,omitempty"`
	Score      float64  `json:"score"`
	// Context holds non-scored adjacent chunks attached by the
	// context-aware strategy.
	Context []Document `json:"context,omitempty"`
}

// SearchOptions controls one similarity-store search.
type SearchOptions struct {
	TopK       int     `json:"top_k"`
	Threshold  float64 `json:"threshold,omitempty"`
	Collection string  `json:"collection,omitempty"`
	Filter     string  `json:"filter,omitempty"`
}

// Query carries a raw question and its (possibly absent) rewrite.
// CacheKey is the raw text; a rewrite is computed at most once per
// cache key within one request.
type Query struct {
	Raw       string `json:"raw"`
	Rewritten string `json:"rewritten,omitempty"`
	CacheKey  string `json:"cache_key"`
}

// Text returns the rewritten form when present, else the raw text.
func (q Query) Text() string {
	if q.Rewritten != "" {
		return q.Rewritten
	}
	return q.Raw
}

// StrategyDecision names one retrieval algorithm plus its parameters.
// Immutable once chosen; a fallback decision supersedes, never mutates.
type StrategyDecision struct {
	Name      string             `json:"name"` // basic, mmr, hybrid, context_aware
	Params    map[string]float64 `json:"params,omitempty"`
	Reasoning string             `json:"reasoning,omitempty"`
}

// ValidationVerdict is the Result Auditor's judgment of a result set.
type ValidationVerdict struct {
	IsValid           bool              `json:"is_valid"`
	Confidence        float64           `json:"confidence"`
	Issues            []string          `json:"issues,omitempty"`
	SuggestedFallback *StrategyDecision `json:"suggested_fallback,omitempty"`
}

// RetrievalOutcome is the terminal artifact of one retrieval call.
type RetrievalOutcome struct {
	Candidates   []SearchResult     `json:"candidates"`
	StrategyUsed StrategyDecision   `json:"strategy_used"`
	Validation   *ValidationVerdict `json:"validation,omitempty"`
}

// IntentScore is one weighted intent label.
type IntentScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// IntentClassification combines safety screening with multi-label
// intent scoring. Primary is the argmax of All; IsMultiDomain is true
// when more than one label clears the confidence bar.
type IntentClassification struct {
	Primary       string        `json:"primary"`
	All           []IntentScore `json:"all"`
	IsMultiDomain bool          `json:"is_multi_domain"`
	IsSafe        bool          `json:"is_safe"`
	SafetyReason  string        `json:"safety_reason,omitempty"`
}

// Qualifying returns the labels whose confidence clears the bar,
// ordered by descending confidence.
func (c *IntentClassification) Qualifying(bar float64) []string {
	out := make([]string, 0, len(c.All))
	for _, s := range c.All {
		if s.Confidence >= bar {
			out = append(out, s.Label)
		}
	}
	return out
}

// AgentResponse is one dispatched generator's output.
type AgentResponse struct {
	Intent        string         `json:"intent"`
	Text          string         `json:"text"`
	UsedDocuments []SearchResult `json:"used_documents,omitempty"`
	Err           string         `json:"error,omitempty"`
}

// FusedAnswer is the single answer assembled per request. Created once,
// never mutated after assembly.
type FusedAnswer struct {
	RequestID          string                   `json:"request_id"`
	Text               string                   `json:"text"`
	IntentsCovered     []string                 `json:"intents_covered"`
	PerIntentResponses map[string]AgentResponse `json:"per_intent_responses,omitempty"`
	Blocked            bool                     `json:"blocked,omitempty"`
	BlockReason        string                   `json:"block_reason,omitempty"`
	Degraded           bool                     `json:"degraded,omitempty"`
	Emergency          bool                     `json:"emergency,omitempty"`
}
