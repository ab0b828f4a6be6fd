package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
	"github.com/ruchit2005/Pran-Protocol/schema"
)

const (
	defaultVectorField = "vector"
	contentField       = "content"
	metadataField      = "metadata"
)

// MilvusProvider implements VectorStoreProvider on a Milvus deployment.
// Each knowledge domain maps to its own collection.
type MilvusProvider struct {
	client      mclient.Client
	vectorField string
	metricType  entity.MetricType
	timeout     time.Duration
}

func NewMilvusProvider(ctx context.Context, cfg config.VectorDBConfig) (*MilvusProvider, error) {
	port := cfg.Port
	if port == 0 {
		port = 19530
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	c, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus at %s: %w", addr, err)
	}

	vf := cfg.VectorField
	if vf == "" {
		vf = defaultVectorField
	}
	mt := entity.COSINE
	if cfg.MetricType != "" {
		mt = entity.MetricType(cfg.MetricType)
	}
	timeout := 5 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &MilvusProvider{client: c, vectorField: vf, metricType: mt, timeout: timeout}, nil
}

func (p *MilvusProvider) Close() error {
	return p.client.Close()
}

func (p *MilvusProvider) SearchDocs(ctx context.Context, vector []float64, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	if opts == nil || opts.Collection == "" {
		return nil, fmt.Errorf("milvus search: collection is required")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vec := make([]float32, len(vector))
	for i, v := range vector {
		vec[i] = float32(v)
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, fmt.Errorf("milvus search param: %w", err)
	}

	results, err := p.client.Search(ctx, opts.Collection, nil, opts.Filter,
		[]string{contentField, metadataField},
		[]entity.Vector{entity.FloatVector(vec)},
		p.vectorField, p.metricType, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search %s: %w", opts.Collection, err)
	}

	out := make([]schema.SearchResult, 0, topK)
	for _, rs := range results {
		contentCol := rs.Fields.GetColumn(contentField)
		metaCol := rs.Fields.GetColumn(metadataField)
		for i := 0; i < rs.ResultCount; i++ {
			doc := schema.Document{}
			if rs.IDs != nil {
				if v, err := rs.IDs.Get(i); err == nil {
					doc.ID = fmt.Sprint(v)
				}
			}
			if contentCol != nil {
				if v, err := contentCol.Get(i); err == nil {
					if s, ok := v.(string); ok {
						doc.Content = s
					}
				}
			}
			if metaCol != nil {
				if v, err := metaCol.Get(i); err == nil {
					doc.Metadata = parseMetadata(v)
				}
			}
			score := float64(rs.Scores[i])
			if opts.Threshold > 0 && score < opts.Threshold {
				continue
			}
			out = append(out, schema.SearchResult{
				Document:   doc,
				Similarity: score,
				Score:      score,
			})
		}
	}
	logger.Debugf("milvus: %s returned %d docs (topK=%d)", opts.Collection, len(out), topK)
	return out, nil
}

// parseMetadata tolerates metadata stored either as a JSON varchar or a
// native JSON field surfaced as bytes.
func parseMetadata(v interface{}) map[string]string {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil
	}
	meta := make(map[string]string, len(loose))
	for k, val := range loose {
		meta[k] = fmt.Sprint(val)
	}
	return meta
}
