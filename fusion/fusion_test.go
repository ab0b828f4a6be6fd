package fusion

import (
	"strings"
	"testing"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

func result(id string, score float64) schema.SearchResult {
	return schema.SearchResult{Document: schema.Document{ID: id, Content: "content " + id}, Score: score}
}

func TestDedupeMax(t *testing.T) {
	a := []schema.SearchResult{result("x", 0.9), result("y", 0.5)}
	b := []schema.SearchResult{result("y", 0.8), result("z", 0.7)}

	out := DedupeMax(a, b)
	if len(out) != 3 {
		t.Fatalf("want 3 unique documents, got %d", len(out))
	}
	if out[0].Document.ID != "x" || out[1].Document.ID != "y" || out[2].Document.ID != "z" {
		t.Fatalf("unexpected order: %+v", out)
	}
	if out[1].Score != 0.8 {
		t.Fatalf("duplicate must keep its max score, got %v", out[1].Score)
	}
}

func TestRRF(t *testing.T) {
	a := []schema.SearchResult{result("x", 0), result("y", 0)}
	b := []schema.SearchResult{result("y", 0), result("z", 0)}

	out := RRF(60, a, b)
	if len(out) != 3 {
		t.Fatalf("want 3 documents, got %d", len(out))
	}
	// y appears in both lists and must outrank the single-list documents
	if out[0].Document.ID != "y" {
		t.Fatalf("want y first, got %s", out[0].Document.ID)
	}
	if out[0].Score <= out[1].Score {
		t.Fatalf("fused scores not descending: %+v", out)
	}
}

func TestRRF_EmptyLists(t *testing.T) {
	if out := RRF(0); len(out) != 0 {
		t.Fatalf("want empty result, got %d", len(out))
	}
}

func TestCompose_DeduplicatesSentences(t *testing.T) {
	responses := []schema.AgentResponse{
		{Intent: "a", Text: "Drink warm water. Rest well."},
		{Intent: "b", Text: "Rest well. Eat light food."},
	}
	out := Compose(responses)
	if strings.Count(out, "Rest well") != 1 {
		t.Fatalf("repeated sentence must appear once: %q", out)
	}
	for _, want := range []string{"Drink warm water", "Eat light food"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestCompose_SkipsEmpty(t *testing.T) {
	out := Compose([]schema.AgentResponse{{Intent: "a", Text: ""}, {Intent: "b", Text: "Only section."}})
	if out != "Only section." {
		t.Fatalf("unexpected composition: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	in := []schema.SearchResult{result("a", 1), result("b", 0.5)}
	if got := Truncate(in, 1); len(got) != 1 {
		t.Fatalf("want 1, got %d", len(got))
	}
	if got := Truncate(in, 0); len(got) != 2 {
		t.Fatalf("zero cap must keep all, got %d", len(got))
	}
}
