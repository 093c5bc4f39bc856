// cmd/gt-analyzer/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gt-analyzer/internal/common/config"
	"gt-analyzer/internal/common/database"
	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/common/observability"
	"gt-analyzer/internal/consolidation"
	"gt-analyzer/internal/extraction"
	"gt-analyzer/internal/llm"
	"gt-analyzer/internal/prompts"
	"gt-analyzer/internal/storage"
	"gt-analyzer/internal/workflow"
	"gt-analyzer/pkg/vocabulary"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "path to config yaml (default: built-in search paths)")
	inputPath := flag.String("input", "", "interview transcript file or directory of .txt files")
	outputPath := flag.String("output", "", "path to write the analysis result JSON")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting gt-analyzer...",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.Name),
	)

	if *inputPath == "" {
		zapLog.Fatal("missing -input: need an interview file or directory")
	}
	interviews, err := readInterviews(*inputPath)
	if err != nil {
		zapLog.Fatal("reading interviews failed", zap.Error(err))
	}
	zapLog.Info("Interviews loaded", zap.Int("count", len(interviews)))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			zapLog.Fatal("tracing init failed", zap.Error(err))
		}
		defer tracing.Shutdown()
		zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.JaegerEndpoint))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry (optional) ---
	var graph *storage.PostgresGraph
	if cfg.Database.Postgres.Host != "" {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		graph = storage.NewPostgresGraph(pg, log)
		if err := graph.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("graph schema init failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (optional) ---
	var quotes *storage.QuoteIndex
	if cfg.Database.Elasticsearch.GetURL() != "" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		quotes = storage.NewQuoteIndex(esClient, cfg.Database.Elasticsearch.QuoteIndex, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Completion cache backend ---
	var cache llm.CompletionCache
	switch cfg.Cache.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()

		cache = llm.NewRedisCache(redisClient.GetClient(), config.GetDuration(cfg.Cache.TTL), log)
		zapLog.Info("Redis completion cache enabled")
	case "memory":
		lruCache, err := llm.NewLRUCache(cfg.Cache.LRUSize)
		if err != nil {
			zapLog.Fatal("lru cache init failed", zap.Error(err))
		}
		cache = lruCache
		zapLog.Info("In-memory completion cache enabled", zap.Int("size", cfg.Cache.LRUSize))
	case "", "none":
		zapLog.Info("Completion cache disabled")
	default:
		zapLog.Fatal("unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}

	// --- Completion provider ---
	var provider llm.Provider
	switch cfg.Model.Provider {
	case "gemini":
		provider, err = llm.NewGeminiProvider(ctx, cfg.Model.APIKey, cfg.Model.Name)
		if err != nil {
			zapLog.Fatal("gemini provider init failed", zap.Error(err))
		}
	case "openai":
		provider = llm.NewOpenAIProvider(cfg.Model.APIKey, cfg.Model.BaseURL, cfg.Model.Name,
			config.GetDuration(cfg.Model.RequestTimeout))
	default:
		zapLog.Fatal("unknown model provider", zap.String("provider", cfg.Model.Provider))
	}

	client := llm.NewResilientClient(provider, llm.Config{
		MaxRetries:       cfg.Model.MaxRetries,
		RetryBaseDelay:   config.GetDuration(cfg.Model.RetryBaseDelay),
		BreakerThreshold: cfg.Model.BreakerThreshold,
		BreakerCooldown:  config.GetDuration(cfg.Model.BreakerCooldown),
		RequestTimeout:   config.GetDuration(cfg.Model.RequestTimeout),
		SchemaRetries:    cfg.Model.SchemaRetries,
		Temperature:      cfg.Model.Temperature,
	}, cache, log)

	// --- Vocabulary ---
	vocab := vocabulary.Default()
	if cfg.Analysis.VocabularyPath != "" {
		vocab, err = vocabulary.LoadVocabulary(cfg.Analysis.VocabularyPath)
		if err != nil {
			zapLog.Fatal("vocabulary load failed",
				zap.String("path", cfg.Analysis.VocabularyPath), zap.Error(err))
		}
	}
	relationships := consolidation.NewRelationshipConsolidator(vocab, cfg.Analysis.VocabularyMode, log)

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "ready",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		zapLog.Warn("Shutdown signal received, cancelling run", zap.String("signal", sig.String()))
		cancel()
	}()

	runStart := time.Now()

	// --- Per-interview entity extraction into the graph ---
	if graph != nil {
		extractor := extraction.NewValidatedExtractor(
			extraction.NewExtractor(client, extraction.Config{
				RelationshipPass: true,
				MaxTokens:        cfg.Model.MaxTokens,
			}, log),
			consolidation.NewEntityConsolidator(cfg.Analysis.ConsolidationThreshold, log),
			relationships,
			consolidation.NewQualityValidator(
				cfg.Analysis.AutoApproveThreshold,
				cfg.Analysis.ReviewThreshold,
				cfg.Analysis.ValidationThreshold,
			),
			log,
		)

		for i, text := range interviews {
			extracted, err := extractor.Extract(ctx, text)
			if err != nil {
				obs.RecordRunProcessed(ctx, "failed")
				zapLog.Fatal("entity extraction failed", zap.Int("interview", i+1), zap.Error(err))
			}
			for _, candidate := range extracted.Candidates {
				if _, err := graph.CreateEntity(ctx, candidate); err != nil {
					zapLog.Fatal("storing entity failed", zap.Error(err))
				}
			}
			for _, rel := range extracted.Relationships {
				if _, err := graph.CreateRelationship(ctx, rel); err != nil {
					zapLog.Fatal("storing relationship failed", zap.Error(err))
				}
			}
			zapLog.Info("Interview extracted",
				zap.Int("interview", i+1),
				zap.Int("entities", len(extracted.Candidates)),
				zap.Int("relationships", len(extracted.Relationships)),
				zap.Int("merged", extracted.Stats.Merged),
				zap.Int("rejected", extracted.Stats.Rejected),
				zap.Int("passFailures", extracted.Stats.PassFailures),
			)
		}
	} else {
		zapLog.Info("Graph storage not configured, skipping entity extraction")
	}

	// --- Grounded theory workflow ---
	wf := workflow.New(client, prompts.NewBuilder(vocab), relationships, cfg.Analysis, cfg.Model.MaxTokens, log)
	result, err := wf.ExecuteCompleteWorkflow(ctx, interviews)
	if err != nil {
		obs.RecordRunProcessed(ctx, "failed")
		obs.RecordRunDuration(ctx, time.Since(runStart), "failed")
		stdErr := errors.Normalize(err)
		zapLog.Fatal("analysis run failed",
			zap.Any("stage", stdErr.Metadata["stage"]),
			zap.Any("causeCategory", stdErr.Metadata["causeCategory"]),
			zap.Error(err),
		)
	}
	result.Metadata.Model = cfg.Model.Name

	if graph != nil {
		if err := graph.StoreResult(ctx, result); err != nil {
			zapLog.Fatal("storing analysis result failed", zap.Error(err))
		}
	}
	if quotes != nil {
		if err := quotes.IndexResult(ctx, result); err != nil {
			// Quote search is an auxiliary surface; the stored run is authoritative.
			zapLog.Warn("quote indexing failed", zap.Error(err))
		}
	}

	obs.RecordRunProcessed(ctx, "completed")
	obs.RecordRunDuration(ctx, time.Since(runStart), "completed")

	if *outputPath != "" {
		if err := writeResultFile(*outputPath, result); err != nil {
			zapLog.Fatal("writing result failed", zap.String("path", *outputPath), zap.Error(err))
		}
		zapLog.Info("Result written", zap.String("path", *outputPath))
	}

	zapLog.Info("Analysis finished",
		zap.String("runId", result.Metadata.RunID),
		zap.String("theory", result.TheoreticalModel.Name),
		zap.Int("codes", len(result.Codes)),
		zap.Int("relationships", len(result.Relationships)),
		zap.Int("coreCategories", len(result.CoreCategories)),
		zap.Int("memos", len(result.Memos)),
		zap.Duration("took", time.Since(runStart)),
	)
}

// readInterviews loads one transcript file, or every .txt file of a
// directory in name order.
func readInterviews(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var files []string
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.txt"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	var interviews []string
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		interviews = append(interviews, string(raw))
	}
	if len(interviews) == 0 {
		return nil, fmt.Errorf("no interview text found under %s", path)
	}
	return interviews, nil
}

func writeResultFile(path string, result interface{}) error {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
