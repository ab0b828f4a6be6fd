package strategy

import (
	"strings"

	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/metrics"
	"github.com/ruchit2005/Pran-Protocol/preprocess"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Retrieval strategy names.
const (
	Basic        = "basic"
	MMR          = "mmr"
	Hybrid       = "hybrid"
	ContextAware = "context_aware"
)

// fallbackChain is the fixed order tried when the auditor rejects a
// result set. It is finite and never revisits a strategy.
var fallbackChain = map[string]string{
	Basic:  Hybrid,
	Hybrid: MMR,
	MMR:    ContextAware,
}

var comparisonMarkers = []string{"compare", "versus", " vs ", "difference"}
var listMarkers = []string{"list", " all ", "types of"}
var exploratoryMarkers = []string{"overview", "about"}
var entityMarkers = []string{"what is", "treatment for", "remedy for", "medicine for"}
var questionWords = []string{"what", "how", "why", "when", "which", "who", "can", "should", "is", "are", "does", "do"}

// Selector chooses a retrieval strategy from query text alone. It is a
// pure function of the query plus configured tuning parameters.
type Selector struct {
	Cfg config.RetrievalConfig
}

// Select walks the decision table in order; first match wins.
func (s *Selector) Select(query string) schema.StrategyDecision {
	d := s.decide(query)
	metrics.IncStrategySelected(d.Name, false)
	return d
}

func (s *Selector) decide(query string) schema.StrategyDecision {
	lower := " " + strings.ToLower(strings.TrimSpace(query)) + " "
	words := strings.Fields(query)

	isComparison := containsAny(lower, comparisonMarkers)
	isList := containsAny(lower, listMarkers)
	isExploratory := containsAny(lower, exploratoryMarkers)

	// Specific entity, short, not a list/comparison: neighbors of the
	// matched chunk usually complete the answer.
	if s.namesEntity(lower) && !isComparison && !isList && len(words) <= 8 {
		return schema.StrategyDecision{
			Name: ContextAware,
			Params: map[string]float64{
				"context_window": float64(s.contextWindow()),
			},
			Reasoning: "specific entity query, expanding with neighboring chunks",
		}
	}

	if isComparison || isList || isExploratory {
		df := s.Cfg.DiversityFactor
		if df <= 0 {
			df = 0.6
		}
		reason := "exploratory query, diversifying results"
		if isComparison {
			if s.Cfg.DiversityFactorComparison > 0 {
				df = s.Cfg.DiversityFactorComparison
			} else {
				df = 0.7
			}
			reason = "comparison query, maximizing result diversity"
		}
		return schema.StrategyDecision{
			Name:      MMR,
			Params:    map[string]float64{"diversity_factor": df},
			Reasoning: reason,
		}
	}

	if isQuestion(query) && len(words) >= 5 {
		sw := s.Cfg.SemanticWeight
		if sw <= 0 {
			sw = 0.7
		}
		return schema.StrategyDecision{
			Name:      Hybrid,
			Params:    map[string]float64{"semantic_weight": sw},
			Reasoning: "natural-language question, blending semantic and keyword signals",
		}
	}

	return schema.StrategyDecision{
		Name:      Basic,
		Reasoning: "default similarity retrieval",
	}
}

// Fallback returns the next strategy after current, or nil when the
// chain is exhausted.
func (s *Selector) Fallback(current string) *schema.StrategyDecision {
	next, ok := fallbackChain[current]
	if !ok {
		return nil
	}
	d := &schema.StrategyDecision{
		Name:      next,
		Reasoning: "fallback after rejected result set",
	}
	switch next {
	case Hybrid:
		sw := s.Cfg.SemanticWeight
		if sw <= 0 {
			sw = 0.7
		}
		d.Params = map[string]float64{"semantic_weight": sw}
	case MMR:
		df := s.Cfg.DiversityFactor
		if df <= 0 {
			df = 0.6
		}
		d.Params = map[string]float64{"diversity_factor": df}
	case ContextAware:
		d.Params = map[string]float64{"context_window": float64(s.contextWindow())}
	}
	metrics.IncStrategySelected(next, true)
	return d
}

// ByName returns a decision for an explicit strategy override.
func (s *Selector) ByName(name string) (schema.StrategyDecision, bool) {
	switch name {
	case Basic:
		return schema.StrategyDecision{Name: Basic, Reasoning: "explicit override"}, true
	case MMR:
		df := s.Cfg.DiversityFactor
		if df <= 0 {
			df = 0.6
		}
		return schema.StrategyDecision{Name: MMR, Params: map[string]float64{"diversity_factor": df}, Reasoning: "explicit override"}, true
	case Hybrid:
		sw := s.Cfg.SemanticWeight
		if sw <= 0 {
			sw = 0.7
		}
		return schema.StrategyDecision{Name: Hybrid, Params: map[string]float64{"semantic_weight": sw}, Reasoning: "explicit override"}, true
	case ContextAware:
		return schema.StrategyDecision{Name: ContextAware, Params: map[string]float64{"context_window": float64(s.contextWindow())}, Reasoning: "explicit override"}, true
	}
	return schema.StrategyDecision{}, false
}

func (s *Selector) contextWindow() int {
	if s.Cfg.ContextWindow > 0 {
		return s.Cfg.ContextWindow
	}
	return 1
}

func (s *Selector) namesEntity(lower string) bool {
	if containsAny(lower, entityMarkers) {
		return true
	}
	return preprocess.CountDomainTerms(lower) > 0
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isQuestion(query string) bool {
	trimmed := strings.TrimSpace(query)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	fields := strings.Fields(strings.ToLower(trimmed))
	if len(fields) == 0 {
		return false
	}
	for _, w := range questionWords {
		if fields[0] == w {
			return true
		}
	}
	return false
}
