// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/config"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/domain/ports/repository"
	aiAdapters "job-insight-chat/internal/infra/adapters/ai"
	"job-insight-chat/internal/infra/api"
	"job-insight-chat/internal/infra/api/apiv1"
	"job-insight-chat/internal/infra/db/memory"
	pg "job-insight-chat/internal/infra/db/postgres"
	"job-insight-chat/internal/infra/logging"
	"job-insight-chat/internal/infra/metrics"
	red "job-insight-chat/internal/infra/redis"
	"job-insight-chat/internal/infra/sched"
	"job-insight-chat/internal/infra/worker"
	"job-insight-chat/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

// stores groups the persistence and coordination backends for one run mode.
type stores struct {
	messages repository.ConversationRepository
	jobs     repository.JobRepository
	ledger   repository.CreditLedger
	genJobs  repository.GenerationJobRepository
	locker   adapter.Locker
	limiter  apiv1.RateLimiter
	close    func()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "run on in-memory stores with a scripted model")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] in-memory stores, noop model")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("stores")
	}
	defer st.close()

	source, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("generation source")
	}

	// ---- Generation pipeline ----
	var tokens adapter.TokenCounter
	if !cfg.Runtime.Dev {
		tokens = aiAdapters.NewTiktokenCounter(cfg.AI.DefaultModel)
	}
	lifecycle := usecase.NewStatusLifecycle(st.messages, logger)
	aggregator := usecase.NewResponseAggregator(
		usecase.NewContextWindowBuilder(st.messages),
		usecase.NewTemplatePromptAssembler(cfg.AI.DefaultModel),
		source,
		tokens,
		lifecycle,
		usecase.NewCreditSettlement(st.ledger, logger),
		usecase.AggregatorConfig{
			HistoryLimit:  cfg.Chat.GenerationHistoryLimit,
			FlushInterval: cfg.Chat.FlushInterval,
			Timeout:       cfg.Chat.GenerationTimeout,
			CreditCost:    cfg.Chat.CreditCost,
			Dev:           cfg.Runtime.Dev,
		},
		logger,
	)

	pool := worker.NewPool(cfg.Worker.Workers, logger)
	pool.Start(ctx)

	var dispatcher adapter.JobDispatcher
	switch cfg.Worker.Mode {
	case "queue":
		dispatcher = worker.NewQueueDispatcher(st.genJobs)
		proc := worker.NewJobProcessor(st.genJobs, aggregator, st.locker, cfg.Worker.LockTTL, cfg.Worker.PollInterval, logger)
		go proc.Start(ctx, pool)
	default:
		dispatcher = worker.NewPoolDispatcher(pool, aggregator, st.locker, cfg.Worker.LockTTL, logger)
	}

	convUC := usecase.NewConversationUseCase(st.messages, st.jobs, st.ledger, dispatcher, cfg.Chat.CreditCost, logger)

	reaper := sched.NewStaleReaper(cfg.Worker.ReapInterval, cfg.Worker.StaleAfter, lifecycle, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP ----
	v1 := apiv1.NewServer(convUC, st.limiter, cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow, logger)
	server := api.NewServer(cfg.HTTP.Port, api.NewRouter(v1, logger), logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Accepted messages already have a queued task; let the pool finish them
	// before the root context goes away.
	pool.Stop()
	cancel()
}

func buildStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*stores, error) {
	if cfg.Runtime.Dev {
		jobs := memory.NewJobRepo()
		ledger := memory.NewCreditLedger()
		seedDev(jobs, ledger)
		return &stores{
			messages: memory.NewConversationRepo(),
			jobs:     jobs,
			ledger:   ledger,
			genJobs:  memory.NewGenerationJobRepo(),
			locker:   worker.NewLocalLocker(),
			close:    func() {},
		}, nil
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)
	tm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.Connect(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info().Str("redis", cfg.Redis.URL).Msg("connected to stores")

	return &stores{
		messages: pg.NewConversationRepo(pool),
		jobs:     pg.NewJobRepoCacheDecorator(pg.NewJobRepo(pool), red.NewJobCache(redisClient, cfg.Redis.TTL)),
		ledger:   pg.NewCreditLedger(pool, tm),
		genJobs:  pg.NewGenerationJobRepo(pool, tm),
		locker:   red.NewLocker(redisClient),
		limiter:  red.NewRateLimiter(redisClient),
		close: func() {
			_ = redisClient.Close()
			pool.Close()
		},
	}, nil
}

func buildSource(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.GenerationSource, error) {
	byProvider := map[string]adapter.GenerationSource{}

	if cfg.AI.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiSource(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, modelFor(cfg, "gemini"), cfg.AI.MaxOutputTokens, *cfg.AI.Temperature)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		byProvider["gemini"] = g
	}
	if cfg.AI.OpenAIKey != "" {
		o, err := aiAdapters.NewOpenAISource(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, modelFor(cfg, "openai"), cfg.AI.MaxOutputTokens, *cfg.AI.Temperature)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		if cfg.AI.DisableStreaming {
			byProvider["openai"] = aiAdapters.NewSingleFragmentSource(o)
		} else {
			byProvider["openai"] = o
		}
	}
	if cfg.AI.Provider == "noop" {
		byProvider["noop"] = aiAdapters.NewNoopSource()
	}

	logger.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.DefaultModel).Bool("streaming", !cfg.AI.DisableStreaming).Msg("generation source configured")
	multi := aiAdapters.NewMultiSource(cfg.AI.Provider, byProvider, map[string]string{cfg.AI.DefaultModel: cfg.AI.Provider})
	return aiAdapters.NewLimitedSource(multi, cfg.AI.ConcurrentLimit), nil
}

// modelFor returns the configured default model when it belongs to provider.
func modelFor(cfg *config.Config, provider string) string {
	if cfg.AI.Provider == provider {
		return cfg.AI.DefaultModel
	}
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return ""
}
