package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/protocol-flow/internal/agent"
	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/export"
	"github.com/nguyentantai21042004/protocol-flow/internal/httpapi"
	"github.com/nguyentantai21042004/protocol-flow/internal/jobs"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
	"github.com/nguyentantai21042004/protocol-flow/internal/pipeline"
	"github.com/nguyentantai21042004/protocol-flow/internal/store"
	"github.com/nguyentantai21042004/protocol-flow/internal/transcription"
	"github.com/nguyentantai21042004/protocol-flow/internal/watcher"
	"github.com/nguyentantai21042004/protocol-flow/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	clearJob := flag.String("clear-cache", "", "delete the cached stage results of a job id and exit")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Protocol Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Max Concurrent Jobs: %d", cfg.Performance.MaxConcurrent)

	if *clearJob != "" {
		if err := clearCache(ctx, cfg.Cache, *clearJob); err != nil {
			log.Error(ctx, "Failed to clear cache: %v", err)
			os.Exit(1)
		}
		log.Info(ctx, "Cleared cached stage results of job %s", *clearJob)
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "Pipeline stopped with error: %v", err)
		os.Exit(1)
	}
	log.Info(ctx, "Meeting Protocol Pipeline stopped")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	// Durable job records
	db, err := store.Open(ctx, cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer store.Close(db)
	repo := store.New(db, log)

	// Stage output cache (debug and replay)
	stageCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	if c, ok := stageCache.(io.Closer); ok {
		defer c.Close()
	}
	if cfg.Cache.Enabled {
		log.Warn(ctx, "Stage cache enabled (%s backend): results are replayed by job id", cfg.Cache.Backend)
	}

	// Transcription
	engine, err := transcription.NewAssemblyAIEngine(cfg.Transcription.APIKey)
	if err != nil {
		return fmt.Errorf("create transcription engine: %w", err)
	}
	transcriber := transcription.New(cfg.Transcription, cfg.Paths.Scratch, executor.New(), engine, stageCache, log)

	// Language model
	model, err := agent.NewGeminiModel(ctx, cfg.LLM.APIKeys, cfg.LLM.Model, log)
	if err != nil {
		return fmt.Errorf("create language model: %w", err)
	}
	prompts, err := agent.NewCatalogue(cfg.LLM.ExamplesDir)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}
	llm := agent.New(cfg.LLM, model, stageCache, log)

	// Export
	documents, err := export.NewDocumentStore(ctx, cfg.Export)
	if err != nil {
		return fmt.Errorf("create document store: %w", err)
	}
	exporter := export.New(cfg.Export, documents, cfg.Paths.Scratch, log)

	orchestrator := pipeline.New(pipeline.Deps{
		Repo:        repo,
		Transcriber: transcriber,
		Agent:       llm,
		Prompts:     prompts,
		Exporter:    exporter,
		Budgets:     cfg.LLM.Budgets,
		Logger:      log,
	})

	dispatcher := jobs.NewDispatcher(repo, orchestrator, cfg.Performance.MaxConcurrent, cfg.Performance.PollInterval, log)
	svc := jobs.NewService(repo, dispatcher, log)

	w, err := watcher.New(cfg.Paths.Inbox, watcher.NewManifestHandler(svc, cfg.Paths.Processed, log), log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	api := httpapi.New(cfg.HTTP.Addr, svc, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}, log)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	components := map[string]func(context.Context) error{
		"dispatcher": dispatcher.Run,
		"watcher":    w.Start,
		"http":       api.Run,
	}
	errChan := make(chan error, len(components))
	done := make(chan struct{}, len(components))
	for name, start := range components {
		go func(name string, start func(context.Context) error) {
			defer func() { done <- struct{}{} }()
			if err := start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("%s: %w", name, err)
			}
		}(name, start)
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Pipeline is ready!")
	log.Info(ctx, "Inbox: %s", cfg.Paths.Inbox)
	log.Info(ctx, "HTTP API: %s", cfg.HTTP.Addr)
	log.Info(ctx, "Export: %s backend, folder %q", cfg.Export.Backend, cfg.Export.Folder)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	// Wait for shutdown signal or error
	var runErr error
	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case runErr = <-errChan:
		log.Error(ctx, "Component error: %v", runErr)
	}

	// Graceful shutdown; running jobs stop at their next stage boundary
	log.Info(ctx, "Shutting down gracefully...")
	cancel()
	for range components {
		<-done
	}
	return runErr
}

// clearCache opens the configured cache backend, even when caching is
// currently disabled, and removes every stage entry of jobID.
func clearCache(ctx context.Context, cfg config.CacheConfig, jobID string) error {
	cfg.Enabled = true
	c, err := cache.New(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close()
	}
	return cache.Clear(ctx, c, jobID)
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Inbox,
		cfg.Paths.Processed,
		cfg.Paths.Scratch,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
