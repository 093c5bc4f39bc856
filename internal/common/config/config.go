// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Model    ModelConfig    `mapstructure:"model"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ModelConfig holds completion provider settings plus the retry and
// circuit-breaker budget for calls against it.
type ModelConfig struct {
	Provider         string  `mapstructure:"provider"` // gemini or openai
	Name             string  `mapstructure:"name"`
	APIKey           string  `mapstructure:"api_key"`
	BaseURL          string  `mapstructure:"base_url"` // openai-compatible endpoints only
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	MaxRetries       int     `mapstructure:"max_retries"`
	RetryBaseDelay   int     `mapstructure:"retry_base_delay"` // milliseconds
	BreakerThreshold int     `mapstructure:"breaker_threshold"`
	BreakerCooldown  int     `mapstructure:"breaker_cooldown"` // milliseconds
	RequestTimeout   int     `mapstructure:"request_timeout"`  // milliseconds
	SchemaRetries    int     `mapstructure:"schema_retries"`   // full completion cycles per structured call
}

// AnalysisConfig holds the coding-methodology knobs. These drive both
// prompt wording and post-stage filtering.
type AnalysisConfig struct {
	MinimumCodeFrequency            int     `mapstructure:"minimum_code_frequency"`
	RelationshipConfidenceThreshold float64 `mapstructure:"relationship_confidence_threshold"`
	ConsolidationThreshold          float64 `mapstructure:"consolidation_threshold"`
	AutoApproveThreshold            float64 `mapstructure:"auto_approve_threshold"`
	ReviewThreshold                 float64 `mapstructure:"review_threshold"`
	ValidationThreshold             float64 `mapstructure:"validation_threshold"`
	TheoreticalSensitivity          string  `mapstructure:"theoretical_sensitivity"` // low, balanced, high
	CodingDepth                     string  `mapstructure:"coding_depth"`            // surface, standard, deep
	VocabularyMode                  string  `mapstructure:"vocabulary_mode"`         // open, closed, hybrid
	VocabularyPath                  string  `mapstructure:"vocabulary_path"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL alternative to addresses
	QuoteIndex string   `mapstructure:"quote_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig selects the completion cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // redis, memory, none
	TTL     int    `mapstructure:"ttl"`     // milliseconds
	LRUSize int    `mapstructure:"lru_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// TracingConfig holds the Jaeger exporter settings.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
