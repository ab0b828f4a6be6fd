package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.validateEmbedding(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateVectorDB(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateDomains(); err != nil {
		errs = append(errs, err...)
	}
	if c.Pipeline != nil {
		if err := c.validatePipeline(); err != nil {
			errs = append(errs, err...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}
	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}
	if strings.EqualFold(c.VectorDB.Provider, "milvus") && c.VectorDB.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.host",
			Message: "vectordb host is required for milvus provider",
		})
	}

	return errs
}

func (c *Config) validateDomains() ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool, len(c.Domains))
	for i, d := range c.Domains {
		if d.Intent == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("domains[%d].intent", i),
				Message: "domain intent label is required",
			})
			continue
		}
		if seen[d.Intent] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("domains[%d].intent", i),
				Message: fmt.Sprintf("duplicate domain intent %q", d.Intent),
			})
		}
		seen[d.Intent] = true
		if d.Threshold < 0 || d.Threshold > 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("domains[%d].threshold", i),
				Message: fmt.Sprintf("threshold must be in [0, 1], got %.2f", d.Threshold),
			})
		}
	}

	return errs
}

func (c *Config) validatePipeline() ValidationErrors {
	var errs ValidationErrors
	pc := c.Pipeline

	for field, v := range map[string]float64{
		"pipeline.rewrite.drift_similarity":      pc.Rewrite.DriftSimilarity,
		"pipeline.rewrite.drift_overlap":         pc.Rewrite.DriftOverlap,
		"pipeline.retrieval.similarity_threshold": pc.Retrieval.SimilarityThreshold,
		"pipeline.retrieval.semantic_weight":     pc.Retrieval.SemanticWeight,
		"pipeline.retrieval.diversity_factor":    pc.Retrieval.DiversityFactor,
		"pipeline.audit.avg_similarity":          pc.Audit.AvgSimilarity,
		"pipeline.intent.confidence_bar":         pc.Intent.ConfidenceBar,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be in [0, 1], got %.2f", field, v),
			})
		}
	}

	if pc.Retrieval.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.retrieval.top_k",
			Message: fmt.Sprintf("top_k %d is too large (max recommended: 100)", pc.Retrieval.TopK),
		})
	}
	if pc.Rerank.Enable && pc.Rerank.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "pipeline.rerank.endpoint",
			Message: "rerank endpoint is required when rerank is enabled",
		})
	}
	if pc.Audit.Enable && pc.Audit.Provider == "http" && pc.Audit.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "pipeline.audit.endpoint",
			Message: "audit endpoint is required when provider is http",
		})
	}

	return errs
}
