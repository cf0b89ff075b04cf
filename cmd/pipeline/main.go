// Package main is the entry point for the video embed pipeline CLI. It runs
// both content passes over a directory of markdown files: resolution (scan
// and embed, populating the cache) and aggregation (per-document duration
// totals from the rendered output).
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"video-embed-pipeline/internal/config"
	"video-embed-pipeline/internal/domain"
	"video-embed-pipeline/internal/infra/cachestore"
	"video-embed-pipeline/internal/infra/streamable"
	"video-embed-pipeline/internal/logger"
	"video-embed-pipeline/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting video-embed-pipeline",
		zap.String("env", cfg.App.Env),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("source_dir", cfg.Content.SourceDir),
	)

	backend := newBackend(cfg, log.Logger)

	api := streamable.New(streamable.ClientConfig{
		BaseURL: cfg.Streamable.BaseURL,
		Timeout: cfg.Streamable.Timeout,
		Retry: streamable.RetryConfig{
			MaxAttempts: cfg.Streamable.Retry.MaxAttempts,
			WaitTime:    cfg.Streamable.Retry.WaitTime,
			MaxWaitTime: cfg.Streamable.Retry.MaxWaitTime,
		},
		CB: streamable.CBConfig{
			MaxRequests:  cfg.Streamable.CB.MaxRequests,
			Interval:     cfg.Streamable.CB.Interval,
			Timeout:      cfg.Streamable.CB.Timeout,
			FailureRatio: cfg.Streamable.CB.FailureRatio,
		},
	}, log.Logger)

	ctx := context.Background()
	session := pipeline.NewSession(ctx, backend, api,
		pipeline.Config{TTL: cfg.Streamable.TTL}, log.Logger)

	docs, err := loadDocuments(cfg.Content.SourceDir)
	if err != nil {
		log.Fatal("failed to read content directory", zap.Error(err))
	}
	log.Info("content loaded", zap.Int("documents", len(docs)))

	// Phase ordering errors are configuration mistakes; they are surfaced
	// loudly but the build still emits whatever output it can.
	if err := session.RunResolution(ctx, docs); err != nil {
		log.Error("resolution phase did not run", zap.Error(err))
	}
	if err := session.RunAggregation(ctx, docs); err != nil {
		log.Error("aggregation phase did not run", zap.Error(err))
	}

	if err := writeDocuments(cfg.Content.OutputDir, docs); err != nil {
		log.Fatal("failed to write output", zap.Error(err))
	}

	for _, doc := range docs {
		meta := session.Metadata(doc.Key)
		if meta.TotalDuration > 0 {
			log.Info("document video duration",
				zap.String("document", doc.Key),
				zap.Float64("seconds", meta.TotalDuration),
			)
		}
	}
}

// newBackend picks the durable cache store per configuration.
func newBackend(cfg *config.Config, log *zap.Logger) domain.CacheBackend {
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		return cachestore.NewRedisStore(client, log, cfg.Cache.Key)
	}

	return cachestore.NewFileStore(cfg.Cache.Path, log)
}

// loadDocuments reads every markdown file under sourceDir, keyed by its
// relative path.
func loadDocuments(sourceDir string) ([]*pipeline.Document, error) {
	var docs []*pipeline.Document

	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		docs = append(docs, &pipeline.Document{Key: rel, Body: string(body)})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// writeDocuments mirrors the documents into outputDir under their keys.
func writeDocuments(outputDir string, docs []*pipeline.Document) error {
	for _, doc := range docs {
		path := filepath.Join(outputDir, doc.Key)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(doc.Body), 0o644); err != nil {
			return err
		}
	}

	return nil
}
