package model

import (
	"runtime"
	"time"
)

// Config holds the full NeuroBridge configuration. Loaded once at process
// start (flags > NEUROBRIDGE_* env > config file > defaults); never mutated
// at runtime.
type Config struct {
	Checklist   ChecklistConfig   `yaml:"checklist" mapstructure:"checklist"`
	Tapping     TappingConfig     `yaml:"tapping" mapstructure:"tapping"`
	Risk        RiskConfig        `yaml:"risk" mapstructure:"risk"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ChecklistConfig controls checklist scoring
type ChecklistConfig struct {
	// FactorMateriality is the minimum share of the sub-score a weighted
	// answer must contribute to be listed as a contributing factor.
	FactorMateriality float64 `yaml:"factor_materiality" mapstructure:"factor_materiality"`
}

// TappingConfig controls tapping-test analysis
type TappingConfig struct {
	MinTaps int `yaml:"min_taps" mapstructure:"min_taps"` // Minimum taps for a valid analysis

	// Saturation points: the metric value at which its score component
	// reaches 1.0. Both metrics increase the sub-score monotonically.
	IrregularitySaturation float64 `yaml:"irregularity_saturation" mapstructure:"irregularity_saturation"` // Coefficient of variation
	FatigueSaturation      float64 `yaml:"fatigue_saturation" mapstructure:"fatigue_saturation"`           // First-vs-last-third decay ratio

	IrregularityWeight float64 `yaml:"irregularity_weight" mapstructure:"irregularity_weight"`
	FatigueWeight      float64 `yaml:"fatigue_weight" mapstructure:"fatigue_weight"`
}

// RiskConfig controls sub-score aggregation and tier cutoffs.
// These are the most safety-relevant parameters in the system.
type RiskConfig struct {
	ChecklistWeight float64 `yaml:"checklist_weight" mapstructure:"checklist_weight"`
	TappingWeight   float64 `yaml:"tapping_weight" mapstructure:"tapping_weight"`

	// SoloConfidenceDiscount scales the composite when only one sub-score
	// is available.
	SoloConfidenceDiscount float64 `yaml:"solo_confidence_discount" mapstructure:"solo_confidence_discount"`

	// Tier cut points on the composite score: < LowMax is low,
	// < ModerateMax is moderate, otherwise elevated.
	TierLowMax      float64 `yaml:"tier_low_max" mapstructure:"tier_low_max"`
	TierModerateMax float64 `yaml:"tier_moderate_max" mapstructure:"tier_moderate_max"`
}

// RetrievalConfig controls the knowledge index
type RetrievalConfig struct {
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`       // Runes per chunk
	ChunkOverlap int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"` // Rune overlap between adjacent chunks
	TopK         int    `yaml:"top_k" mapstructure:"top_k"`                 // Default chunks per query
	EmbedModel   string `yaml:"embed_model" mapstructure:"embed_model"`

	Retries      int           `yaml:"retries" mapstructure:"retries"`             // Embedding call attempts
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"` // Initial backoff, doubles per attempt
	RateLimit    float64       `yaml:"rate_limit" mapstructure:"rate_limit"`       // Embedding requests per second
	RateBurst    int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LLMConfig holds generation-service configuration
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`

	Timeout   int `yaml:"timeout" mapstructure:"timeout"` // Seconds per request
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	Retries      int           `yaml:"retries" mapstructure:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// MaxResponseChars bounds accepted output; longer responses are
	// treated as invalid (the service is untrusted).
	MaxResponseChars int `yaml:"max_response_chars" mapstructure:"max_response_chars"`

	HistoryTurns int `yaml:"history_turns" mapstructure:"history_turns"` // Conversation turns sent as context
}

// HTTPConfig controls document fetching for URL-based ingestion
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// CacheConfig controls the embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"` // Disk layer location ("" = memory only)
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls worker pools
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Batch screening workers
	EmbedWorkers int `yaml:"embed_workers" mapstructure:"embed_workers"` // Concurrent embedding batches at ingest
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults. The numeric scoring constants
// are deliberate placeholders pending clinical review; they are surfaced in
// report factor data so they can be audited.
func DefaultConfig() *Config {
	return &Config{
		Checklist: ChecklistConfig{
			FactorMateriality: 0.05,
		},
		Tapping: TappingConfig{
			MinTaps:                5,
			IrregularitySaturation: 0.5,
			FatigueSaturation:      0.5,
			IrregularityWeight:     0.6,
			FatigueWeight:          0.4,
		},
		Risk: RiskConfig{
			ChecklistWeight:        0.6,
			TappingWeight:          0.4,
			SoloConfidenceDiscount: 0.9,
			TierLowMax:             0.33,
			TierModerateMax:        0.66,
		},
		Retrieval: RetrievalConfig{
			ChunkSize:    800,
			ChunkOverlap: 200,
			TopK:         3,
			EmbedModel:   "text-embedding-3-small",
			Retries:      3,
			RetryBackoff: 500 * time.Millisecond,
			RateLimit:    5,
			RateBurst:    5,
		},
		LLM: LLMConfig{
			Provider:         "", // Disabled by default
			Timeout:          30,
			MaxTokens:        1000,
			Retries:          3,
			RetryBackoff:     time.Second,
			MaxResponseChars: 8000,
			HistoryTurns:     6,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "NeuroBridge/0.1 (+https://github.com/neurobridge/neurobridge)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      runtime.NumCPU(),
			EmbedWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
