// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/config"
	"ai-chat-assistant/internal/domain/ports/adapter"
	aiAdapters "ai-chat-assistant/internal/infra/adapters/ai"
	"ai-chat-assistant/internal/infra/adapters/storage"
	"ai-chat-assistant/internal/infra/api"
	"ai-chat-assistant/internal/infra/db/memory"
	"ai-chat-assistant/internal/infra/logging"
	"ai-chat-assistant/internal/infra/metrics"
	"ai-chat-assistant/internal/infra/scheduler"
	"ai-chat-assistant/internal/infra/tokens"
	"ai-chat-assistant/internal/infra/worker"
	"ai-chat-assistant/internal/usecase"
	"ai-chat-assistant/internal/usecase/contextopt"
)

var (
	version = api.ServiceVersion
	commit  = "dev"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted text)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logging & metrics ----
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	aiMode := "live"
	if cfg.AI.UseDummy {
		aiMode = "dummy"
	}
	metrics.SetBuildInfo(version, commit, aiMode)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- AI providers ----
	chain := buildChain(ctx, cfg.AI, logging.Component(logger, "ai"))
	if !cfg.AI.UseDummy && chain.Empty() {
		logger.Warn().Msg("no AI provider configured; answers will use the apology fallback (set GEMINI_API_KEY or USE_DUMMY_AI=true)")
	}
	logger.Info().Str("mode", aiMode).Strs("providers", chain.Providers()).Msg("AI service ready")

	// ---- Storage ----
	jobRepo := memory.NewJobRepo()
	files, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("upload storage")
	}

	// ---- Use cases & worker ----
	optimizer := contextopt.New(contextopt.Config{
		MaxContextLength: cfg.Context.MaxContextLength,
		MaxMessages:      cfg.Context.MaxMessages,
	})
	assistant := usecase.NewAssistantUseCase(chain, aiAdapters.NewDummyAdapter(), optimizer, usecase.AssistantConfig{
		UseDummy:        cfg.AI.UseDummy,
		ProcessingDelay: cfg.AI.ProcessingDelay,
	}, logging.Component(logger, "assistant"))

	pool := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueSize, logging.Component(logger, "worker"))
	pool.Start(ctx)
	processor := worker.NewJobProcessor(pool, jobRepo, assistant, files, logging.Component(logger, "processor"))

	validator := usecase.NewUploadValidator(cfg.Upload.AllowedTypes, cfg.Upload.MaxSize)
	jobUC := usecase.NewJobUseCase(jobRepo, files, processor, validator, logging.Component(logger, "jobs"))
	contextUC := usecase.NewContextUseCase(jobRepo, optimizer, tokens.NewCounter(logger), logging.Component(logger, "context"))

	// ---- Upload janitor ----
	janitor := usecase.NewUploadJanitor(jobRepo, files, cfg.Upload.Retention, logging.Component(logger, "janitor"))
	sweeper := scheduler.NewScheduler("upload-janitor", cfg.Upload.SweepInterval, 30*time.Second, janitor, logging.Component(logger, "scheduler"))
	sweeper.RunOnce(ctx)
	sweeper.Start(ctx)

	// ---- HTTP API ----
	srv := api.NewServer(jobUC, contextUC, cfg.HTTP, cfg.Upload.MaxSize, logging.Component(logger, "http"))
	server := srv.NewHTTPServer()
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	sweeper.Stop()
	cancel()
	pool.Stop()
	logger.Info().Msg("bye")
}

// buildChain assembles the providers in priority order: Gemini, DeepAI, OpenAI.
// Providers without a key are left out.
func buildChain(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) *aiAdapters.FallbackChain {
	var tiers []aiAdapters.Tier
	add := func(p adapter.AIServiceAdapter, style adapter.PromptStyle) {
		tiers = append(tiers, aiAdapters.Tier{Provider: aiAdapters.NewLimitedAI(p, cfg.ConcurrentLimit), Style: style})
	}

	if cfg.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.GeminiModel, 1024)
		if err != nil {
			logger.Error().Err(err).Msg("gemini disabled")
		} else {
			add(g, adapter.PromptFull)
		}
	}
	if cfg.DeepAIKey != "" {
		d, err := aiAdapters.NewDeepAIAdapter(cfg.DeepAIKey, cfg.DeepAIURL, &http.Client{Timeout: cfg.CallTimeout})
		if err != nil {
			logger.Error().Err(err).Msg("deepai disabled")
		} else {
			add(d, adapter.PromptCompact)
		}
	}
	if cfg.OpenAIKey != "" {
		o, err := aiAdapters.NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error().Err(err).Msg("openai disabled")
		} else {
			add(o, adapter.PromptFull)
		}
	}

	return aiAdapters.NewFallbackChain(aiAdapters.ChainConfig{
		MaxRetries:  cfg.MaxRetries,
		CallTimeout: cfg.CallTimeout,
		RetryDelay:  cfg.RetryDelay,
	}, logger, tiers...)
}
