package agents

import (
	"context"
	"fmt"

	"github.com/ruchit2005/Pran-Protocol/schema"
)

// Generator is one per-intent response generator. The orchestrator
// treats it as a black box: store-backed generators receive retrieved
// evidence in docs, generation-only ones receive nil.
type Generator interface {
	Intent() string
	StoreBacked() bool
	Run(ctx context.Context, query string, docs []schema.SearchResult) (string, error)
}

// Registry is a closed label-to-generator dispatch table, checked at
// startup so an unknown label is an explicit error instead of a
// fall-through.
type Registry struct {
	byIntent map[string]Generator
}

func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{byIntent: make(map[string]Generator, len(gens))}
	for _, g := range gens {
		r.byIntent[g.Intent()] = g
	}
	return r
}

// Get returns the generator for a label.
func (r *Registry) Get(intent string) (Generator, error) {
	g, ok := r.byIntent[intent]
	if !ok {
		return nil, fmt.Errorf("no generator registered for intent %q", intent)
	}
	return g, nil
}

// Intents lists every registered label.
func (r *Registry) Intents() []string {
	out := make([]string, 0, len(r.byIntent))
	for k := range r.byIntent {
		out = append(out, k)
	}
	return out
}
