package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supportchat/chat-api/internal/config"
	domaincache "github.com/supportchat/chat-api/internal/domain/cache"
	"github.com/supportchat/chat-api/internal/domain/conversation"
	"github.com/supportchat/chat-api/internal/domain/faq"
	"github.com/supportchat/chat-api/internal/domain/llm"
	"github.com/supportchat/chat-api/internal/domain/prompt"
	"github.com/supportchat/chat-api/internal/domain/retry"
	"github.com/supportchat/chat-api/internal/infrastructure/auth"
	infracache "github.com/supportchat/chat-api/internal/infrastructure/cache"
	"github.com/supportchat/chat-api/internal/infrastructure/crontab"
	"github.com/supportchat/chat-api/internal/infrastructure/database"
	"github.com/supportchat/chat-api/internal/infrastructure/llmprovider"
	"github.com/supportchat/chat-api/internal/infrastructure/logger"
	"github.com/supportchat/chat-api/internal/infrastructure/observability"
	conversationrepo "github.com/supportchat/chat-api/internal/infrastructure/repository/conversation"
	faqrepo "github.com/supportchat/chat-api/internal/infrastructure/repository/faq"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/handlers"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/middleware"
)

// Application bundles the long-running pieces of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	scheduler  *crontab.Crontab
	log        zerolog.Logger
}

// NewApplication wires the application entrypoint.
func NewApplication(httpServer *httpserver.HttpServer, scheduler *crontab.Crontab, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		scheduler:  scheduler,
		log:        log,
	}
}

// Start runs the HTTP server and the background scheduler until ctx is
// cancelled or either fails.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.httpServer.Run(gctx) })
	g.Go(func() error { return a.scheduler.Run(gctx) })
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		Log:             log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	redisClient, err := infracache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	store := infracache.NewRedisStore(redisClient, log)

	var locker domaincache.Locker = domaincache.NopLocker{}
	if cfg.SessionLockEnabled {
		locker = infracache.NewRedisLocker(redisClient, cfg.SessionLockExpiry, log)
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	faqService := faq.NewService(faqrepo.NewRepository(db), store, faq.ServiceConfig{
		MaxResults: cfg.FAQMaxResults,
		CacheTTL:   cfg.FAQCacheTTL,
	}, log)

	llmClient := llmprovider.NewClient(llmprovider.Config{
		BaseURL: cfg.LLMAPIURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
		Title:   cfg.ServiceName,
	})
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.LLMMaxAttempts
	generator := llm.NewGenerator(llmClient, policy, llm.Options{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}, log)

	promptBuilder := prompt.NewBuilder(prompt.Config{
		MaxFAQs:          cfg.FAQMaxResults,
		MaxHistoryTokens: 1200,
		MaxTotalTokens:   4000,
	}, log)

	chatService := conversation.NewService(
		conversationrepo.NewRepository(db),
		conversationrepo.NewMessageRepository(db),
		faqService,
		generator,
		promptBuilder,
		store,
		locker,
		conversation.ServiceConfig{
			Model:            cfg.LLMModel,
			HistoryLimit:     cfg.HistoryLimit,
			HistoryTTL:       cfg.ConversationCacheTTL,
			MaxMessageLength: cfg.MaxMessageLength,
		},
		log,
	)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Enabled:   cfg.RateLimitEnabled,
		Window:    cfg.RateLimitWindow,
		Max:       cfg.RateLimitMax,
		HourlyMax: cfg.RateLimitHourlyMax,
	}, log)

	healthHandler := handlers.NewHealthHandler(db, redisClient, generator, log)
	handlerProvider := handlers.NewProvider(chatService, faqService, healthHandler, log)

	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, rateLimiter)
	scheduler := crontab.NewCrontab(faqService, crontab.Config{
		Enabled:  cfg.FAQWarmupEnabled,
		Interval: cfg.FAQWarmupInterval,
	}, log)

	app := NewApplication(httpServer, scheduler, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
