package metrics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
)

// RequestTrace records the full shape of one request for structured log
// analysis, complementing the prometheus counters. Setter methods are
// safe for concurrent use; parallel domain tasks report into one trace.
type RequestTrace struct {
	mu sync.Mutex

	RequestID string    `json:"request_id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`

	Emergency bool   `json:"emergency,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
	Primary   string `json:"primary_intent,omitempty"`

	Rewritten       bool     `json:"rewritten"`
	RewriteDecision string   `json:"rewrite_decision,omitempty"`
	Strategy        string   `json:"strategy,omitempty"`
	FallbacksTried  []string `json:"fallbacks_tried,omitempty"`

	IntentsQualified []string `json:"intents_qualified,omitempty"`
	TasksDispatched  int      `json:"tasks_dispatched,omitempty"`
	TasksFailed      int      `json:"tasks_failed,omitempty"`
	GlobalRerank     bool     `json:"global_rerank,omitempty"`
	CandidatesPooled int      `json:"candidates_pooled,omitempty"`

	AuditValid *bool `json:"audit_valid,omitempty"`

	TotalLatencyMs int64  `json:"total_latency_ms"`
	Success        bool   `json:"success"`
	ErrorMsg       string `json:"error_msg,omitempty"`
}

// NewRequestTrace creates a trace stamped with the current time.
func NewRequestTrace(requestID, query string) *RequestTrace {
	return &RequestTrace{RequestID: requestID, Query: query, Timestamp: time.Now()}
}

// AddFallback records one fallback strategy attempt.
func (t *RequestTrace) AddFallback(strategy string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.FallbacksTried = append(t.FallbacksTried, strategy)
}

// SetAuditVerdict records the auditor's validity verdict.
func (t *RequestTrace) SetAuditVerdict(valid bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.AuditValid = &valid
}

// SetRewrite records whether query preparation changed the search text.
func (t *RequestTrace) SetRewrite(decision string, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RewriteDecision = decision
	t.Rewritten = changed
}

// Log emits the trace as a single structured log line.
func (t *RequestTrace) Log() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TotalLatencyMs = time.Since(t.Timestamp).Milliseconds()
	if data, err := json.Marshal(t); err == nil {
		logger.Infof("[REQUEST_TRACE] %s", string(data))
	}
}
