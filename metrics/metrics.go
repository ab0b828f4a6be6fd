package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	retrievalLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pran_retrieval_latency_ms",
		Help:    "Latency of retrieval calls in milliseconds",
		Buckets: []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 800, 1200},
	}, []string{"strategy"})

	retrievalResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pran_retrieval_results",
		Help:    "Number of candidates returned by a retrieval call",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"strategy"})

	rerankLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pran_rerank_latency_ms",
		Help:    "Latency of rerank calls in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600},
	})

	rewriteDecision = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pran_rewrite_decision_total",
		Help: "Query rewrite decisions (skipped/rewritten/drift_discarded/failed)",
	}, []string{"decision"})

	strategySelected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pran_strategy_selected_total",
		Help: "Retrieval strategy selections, including fallback steps",
	}, []string{"strategy", "fallback"})

	auditVerdict = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pran_audit_verdict_total",
		Help: "Result auditor verdicts",
	}, []string{"verdict"})

	intentLabel = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pran_intent_label_total",
		Help: "Qualifying intent labels per classification",
	}, []string{"label"})

	emergencyHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pran_emergency_fastpath_total",
		Help: "Requests short-circuited by the emergency fast path",
	})

	fanoutSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pran_dispatch_fanout_size",
		Help:    "Number of domain tasks fanned out per request",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8},
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(retrievalLatency, retrievalResults, rerankLatency,
			rewriteDecision, strategySelected, auditVerdict, intentLabel,
			emergencyHits, fanoutSize)
	})
}

// ObserveRetrieval records latency and result size for a strategy.
func ObserveRetrieval(strategy string, start time.Time, results int) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	retrievalLatency.WithLabelValues(strategy).Observe(float64(dur))
	retrievalResults.WithLabelValues(strategy).Observe(float64(results))
}

// ObserveRerank records one rerank pass.
func ObserveRerank(start time.Time, results int) {
	ensureRegistered()
	rerankLatency.Observe(float64(time.Since(start).Milliseconds()))
}

// IncRewriteDecision records a preprocessor decision.
func IncRewriteDecision(decision string) {
	ensureRegistered()
	rewriteDecision.WithLabelValues(decision).Inc()
}

// IncStrategySelected records a strategy selection.
func IncStrategySelected(strategy string, fallback bool) {
	ensureRegistered()
	fb := "false"
	if fallback {
		fb = "true"
	}
	strategySelected.WithLabelValues(strategy, fb).Inc()
}

// IncAuditVerdict increments the verdict counter.
func IncAuditVerdict(valid bool) {
	ensureRegistered()
	v := "invalid"
	if valid {
		v = "valid"
	}
	auditVerdict.WithLabelValues(v).Inc()
}

// IncIntentLabel records one qualifying intent label.
func IncIntentLabel(label string) {
	ensureRegistered()
	intentLabel.WithLabelValues(label).Inc()
}

// IncEmergency records an emergency fast-path hit.
func IncEmergency() {
	ensureRegistered()
	emergencyHits.Inc()
}

// ObserveFanout records the multi-path dispatch width.
func ObserveFanout(n int) {
	ensureRegistered()
	fanoutSize.Observe(float64(n))
}

// Collectors exposes all collectors for registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		retrievalLatency, retrievalResults, rerankLatency, rewriteDecision,
		strategySelected, auditVerdict, intentLabel, emergencyHits, fanoutSize,
	}
}
