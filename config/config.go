package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the engine.
type Config struct {
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	// Domains registers the per-intent knowledge domains.
	Domains []DomainConfig `json:"domains,omitempty" yaml:"domains,omitempty"`
	// Pipeline holds retrieval/orchestration tuning. If nil, defaults apply.
	Pipeline *PipelineConfig `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
}

// LLMConfig defines configuration for the generation service.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutMs   int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// EmbeddingConfig defines configuration for the embedding service.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	TimeoutMs  int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// VectorDBConfig defines configuration for the similarity store.
type VectorDBConfig struct {
	Provider string `json:"provider" yaml:"provider"` // Available options: milvus
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// MetricType for similarity search, e.g. COSINE, IP, L2.
	MetricType string `json:"metric_type,omitempty" yaml:"metric_type,omitempty"`
	// VectorField is the collection field holding embeddings.
	VectorField string `json:"vector_field,omitempty" yaml:"vector_field,omitempty"`
	TimeoutMs   int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// DomainConfig binds one intent label to its knowledge store and
// generation prompt. Domains without a collection are generation-only.
type DomainConfig struct {
	// Intent label, e.g. symptom-triage, wellness-support.
	Intent string `json:"intent" yaml:"intent"`
	// Collection is the similarity-store namespace for this domain.
	// Empty means the domain is not store-backed.
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	// SystemPrompt overrides the built-in prompt for this domain.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	TopK         int    `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Threshold    float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Load reads a yaml config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes yaml config bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = DefaultPipeline()
	} else {
		cfg.Pipeline.applyDefaults()
	}
	return &cfg, nil
}

// DomainByIntent returns the domain config for an intent label.
func (c *Config) DomainByIntent(intent string) (DomainConfig, bool) {
	for _, d := range c.Domains {
		if d.Intent == intent {
			return d, true
		}
	}
	return DomainConfig{}, false
}
