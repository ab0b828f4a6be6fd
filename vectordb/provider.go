package vectordb

import (
	"context"
	"fmt"

	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

// VectorStoreProvider abstracts the similarity store. Collections are
// namespaced per knowledge domain; SearchOptions.Collection selects one.
type VectorStoreProvider interface {
	SearchDocs(ctx context.Context, vector []float64, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	Close() error
}

// NewProvider creates a store provider from configuration.
func NewProvider(ctx context.Context, cfg config.VectorDBConfig) (VectorStoreProvider, error) {
	switch cfg.Provider {
	case "milvus", "":
		return NewMilvusProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
