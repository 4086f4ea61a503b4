// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"aura-studio/internal/config"
	"aura-studio/internal/domain/ports/adapter"
	aiAdapters "aura-studio/internal/infra/adapters/ai"
	"aura-studio/internal/infra/logging"
	"aura-studio/internal/infra/metrics"
	red "aura-studio/internal/infra/redis"
	"aura-studio/internal/infra/sched"
	"aura-studio/internal/infra/storage/memory"
	"aura-studio/internal/infra/web"
	"aura-studio/internal/infra/worker"
	"aura-studio/internal/retry"
	"aura-studio/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (canned AI when no key is set)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logging.Global = *logger
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Redis (optional snapshot cache) ----
	var cache *red.SessionCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		cache = red.NewSessionCache(redisClient, cfg.Redis.TTL)
		logger.Info().Str("url", logging.Redact(cfg.Redis.URL, cfg.Runtime.Dev)).Msg("session snapshot cache enabled")
	} else {
		logger.Info().Msg("redis.url empty; session snapshot cache disabled")
	}

	// ---- Repository ----
	sessions := memory.NewSessionRepo(cache, logger)

	// ---- AI generator (Gemini -> OpenAI -> canned in dev) ----
	gen, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("ai: %v", err)
	}

	// ---- Idle session reaper ----
	reaper := sched.NewReaper(cfg.Session.SweepInterval, cfg.Session.MaxIdle, sessions, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- Background image workers ----
	pool := worker.NewPool(cfg.Worker.Count, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	studioUC := usecase.NewStudioUseCase(sessions, gen, pool, logger)
	refineUC := usecase.NewRefineUseCase(sessions, gen, logger)

	// ---- HTTP server ----
	srv := web.NewServer(studioUC, refineUC, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

// buildGenerator assembles the decorated generator stack. Gemini gets
// the image fallback chain; OpenAI is text-only and reports image work
// as unsupported. With no provider key, dev mode falls back to canned
// responses and production refuses to start.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.Generator, error) {
	policy := retry.New(cfg.Retry.MaxRetries, cfg.Retry.InitialDelay, nil)

	switch {
	case cfg.AI.GeminiKey != "":
		primary, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.TextModel, cfg.AI.ImageModel, cfg.AI.ImageSize, cfg.AI.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		secondary, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.TextModel, cfg.AI.ImageFallbackModel, cfg.AI.ImageSize, cfg.AI.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini fallback adapter: %w", err)
		}
		gen := aiAdapters.NewImageFallbackAI(
			aiAdapters.NewRetriedAI(primary, policy),
			aiAdapters.NewRetriedAI(secondary, policy),
			logger,
		)
		logger.Info().
			Str("text_model", cfg.AI.TextModel).
			Str("image_model", cfg.AI.ImageModel).
			Str("image_fallback", cfg.AI.ImageFallbackModel).
			Msg("AI generator: Gemini")
		return aiAdapters.NewLimitedAI(gen, cfg.AI.ConcurrentLimit), nil

	case cfg.AI.OpenAIKey != "":
		base, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		logger.Info().Str("model", cfg.AI.OpenAIModel).Msg("AI generator: OpenAI (text only)")
		return aiAdapters.NewLimitedAI(aiAdapters.NewRetriedAI(base, policy), cfg.AI.ConcurrentLimit), nil

	case cfg.Runtime.Dev:
		logger.Warn().Msg("no AI provider key set; using canned responses")
		return aiAdapters.NewNoopAdapter(), nil

	default:
		return nil, fmt.Errorf("no AI provider configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}
}
