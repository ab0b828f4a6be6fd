package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/ruchit2005/Pran-Protocol/config"
)

// Provider abstracts the embedding service.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float64, error)
	GetProviderType() string
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// zero-length vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity embeds both texts and returns their cosine similarity.
func Similarity(ctx context.Context, p Provider, a, b string) (float64, error) {
	va, err := p.GetEmbedding(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := p.GetEmbedding(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb), nil
}
