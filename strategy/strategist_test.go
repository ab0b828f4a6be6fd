package strategy

import (
	"testing"

	"github.com/ruchit2005/Pran-Protocol/config"
)

func TestSelector_DecisionTable(t *testing.T) {
	s := &Selector{Cfg: config.RetrievalConfig{
		SemanticWeight:            0.7,
		DiversityFactor:           0.6,
		DiversityFactorComparison: 0.7,
		ContextWindow:             1,
	}}

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"entity query", "what is jwara", ContextAware},
		{"entity treatment", "treatment for diabetes", ContextAware},
		{"comparison", "compare ashwagandha versus brahmi for stress", MMR},
		{"list", "list all types of fever remedies", MMR},
		{"exploratory", "give me an overview about panchakarma therapies and uses", MMR},
		{"long question", "how does turmeric actually help with wound healing?", Hybrid},
		{"short keywords", "turmeric milk benefits", Basic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Select(tc.query)
			if got.Name != tc.want {
				t.Fatalf("Select(%q) = %s, want %s (reason: %s)", tc.query, got.Name, tc.want, got.Reasoning)
			}
		})
	}
}

func TestSelector_ComparisonDiversity(t *testing.T) {
	s := &Selector{Cfg: config.RetrievalConfig{DiversityFactor: 0.6, DiversityFactorComparison: 0.7}}
	d := s.Select("compare tulsi versus neem for immunity support")
	if d.Name != MMR {
		t.Fatalf("expected mmr, got %s", d.Name)
	}
	if d.Params["diversity_factor"] != 0.7 {
		t.Fatalf("comparison should use 0.7 diversity, got %v", d.Params["diversity_factor"])
	}
}

func TestSelector_FallbackChainTerminates(t *testing.T) {
	s := &Selector{}
	seen := map[string]bool{Basic: true}
	current := Basic
	steps := 0
	for {
		next := s.Fallback(current)
		if next == nil {
			break
		}
		if seen[next.Name] {
			t.Fatalf("fallback chain revisited %s", next.Name)
		}
		seen[next.Name] = true
		current = next.Name
		steps++
		if steps > 4 {
			t.Fatal("fallback chain did not terminate")
		}
	}
	if current != ContextAware {
		t.Fatalf("chain should end at context_aware, ended at %s", current)
	}
}

func TestSelector_FallbackParams(t *testing.T) {
	s := &Selector{Cfg: config.RetrievalConfig{SemanticWeight: 0.8}}
	d := s.Fallback(Basic)
	if d == nil || d.Name != Hybrid {
		t.Fatalf("fallback(basic) = %+v, want hybrid", d)
	}
	if d.Params["semantic_weight"] != 0.8 {
		t.Fatalf("fallback should carry configured semantic weight, got %v", d.Params)
	}
}

func TestSelector_ByName(t *testing.T) {
	s := &Selector{}
	for _, name := range []string{Basic, MMR, Hybrid, ContextAware} {
		if _, ok := s.ByName(name); !ok {
			t.Fatalf("ByName(%s) not found", name)
		}
	}
	if _, ok := s.ByName("graph"); ok {
		t.Fatal("ByName should reject unknown strategies")
	}
}
