// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GEMINI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile probes the usual locations so the binary works from the repo
// root, a cmd directory, or a test directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("✅ Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in yaml values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Model.APIKey == "" {
		switch cfg.Model.Provider {
		case "openai":
			if val := os.Getenv("OPENAI_API_KEY"); val != "" {
				cfg.Model.APIKey = val
			}
		default:
			if val := os.Getenv("GEMINI_API_KEY"); val != "" {
				cfg.Model.APIKey = val
			} else if val := os.Getenv("GOOGLE_API_KEY"); val != "" {
				cfg.Model.APIKey = val
			}
		}
	}

	// Database overrides
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Model defaults
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "gemini"
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = "gemini-2.0-flash"
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.3
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 4096
	}
	if cfg.Model.MaxRetries == 0 {
		cfg.Model.MaxRetries = 3
	}
	if cfg.Model.RetryBaseDelay == 0 {
		cfg.Model.RetryBaseDelay = 100
	}
	if cfg.Model.BreakerThreshold == 0 {
		cfg.Model.BreakerThreshold = 5
	}
	if cfg.Model.BreakerCooldown == 0 {
		cfg.Model.BreakerCooldown = 30000
	}
	if cfg.Model.RequestTimeout == 0 {
		cfg.Model.RequestTimeout = 60000
	}
	if cfg.Model.SchemaRetries == 0 {
		cfg.Model.SchemaRetries = 2
	}

	// Analysis defaults
	if cfg.Analysis.MinimumCodeFrequency == 0 {
		cfg.Analysis.MinimumCodeFrequency = 1
	}
	if cfg.Analysis.RelationshipConfidenceThreshold == 0 {
		cfg.Analysis.RelationshipConfidenceThreshold = 0.5
	}
	if cfg.Analysis.ConsolidationThreshold == 0 {
		cfg.Analysis.ConsolidationThreshold = 0.85
	}
	if cfg.Analysis.AutoApproveThreshold == 0 {
		cfg.Analysis.AutoApproveThreshold = 0.8
	}
	if cfg.Analysis.ReviewThreshold == 0 {
		cfg.Analysis.ReviewThreshold = 0.6
	}
	if cfg.Analysis.ValidationThreshold == 0 {
		cfg.Analysis.ValidationThreshold = 0.4
	}
	if cfg.Analysis.TheoreticalSensitivity == "" {
		cfg.Analysis.TheoreticalSensitivity = "balanced"
	}
	if cfg.Analysis.CodingDepth == "" {
		cfg.Analysis.CodingDepth = "standard"
	}
	if cfg.Analysis.VocabularyMode == "" {
		cfg.Analysis.VocabularyMode = "hybrid"
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600000
	}
	if cfg.Cache.LRUSize == 0 {
		cfg.Cache.LRUSize = 512
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Observability defaults
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":8080"
	}
	if cfg.Tracing.JaegerEndpoint == "" {
		cfg.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Model.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("model.provider must be gemini or openai, got %q", cfg.Model.Provider)
	}

	if cfg.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}

	a := cfg.Analysis
	if a.AutoApproveThreshold < a.ReviewThreshold || a.ReviewThreshold < a.ValidationThreshold {
		return fmt.Errorf("analysis thresholds must satisfy auto_approve >= review >= validation")
	}

	switch a.VocabularyMode {
	case "open", "closed", "hybrid":
	default:
		return fmt.Errorf("analysis.vocabulary_mode must be open, closed, or hybrid, got %q", a.VocabularyMode)
	}

	// Postgres is an optional surface; its sub-fields matter only once a
	// host is configured.
	if cfg.Database.Postgres.Host != "" {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when postgres host is set")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when postgres host is set")
		}
	}

	if cfg.Database.Elasticsearch.QuoteIndex != "" && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when quote_index is set")
	}

	if cfg.Cache.Backend == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache.backend is redis")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
