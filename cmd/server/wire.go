//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

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
	conversationrepo "github.com/supportchat/chat-api/internal/infrastructure/repository/conversation"
	faqrepo "github.com/supportchat/chat-api/internal/infrastructure/repository/faq"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/handlers"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/middleware"
)

var chatSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversationrepo.NewMessageRepository,
	wire.Bind(new(conversation.MessageRepository), new(*conversationrepo.MessageRepository)),
	faqrepo.NewRepository,
	wire.Bind(new(faq.Repository), new(*faqrepo.Repository)),
	newFAQService,
	wire.Bind(new(conversation.FAQRetriever), new(*faq.Service)),
	wire.Bind(new(handlers.FAQService), new(*faq.Service)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newGenerator,
	wire.Bind(new(conversation.ReplyGenerator), new(*llm.Generator)),
	wire.Bind(new(handlers.LLMProber), new(*llm.Generator)),
	newPromptBuilder,
	newChatService,
	wire.Bind(new(handlers.ChatService), new(*conversation.Service)),
)

// BuildApplication assembles the chat service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newRedisClient,
		newStore,
		newLocker,
		newAuthValidator,
		chatSet,
		newRateLimiter,
		handlers.NewHealthHandler,
		handlers.NewProvider,
		httpserver.New,
		newScheduler,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config, log zerolog.Logger) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		Log:             log,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newRedisClient(cfg *config.Config) (redis.UniversalClient, error) {
	return infracache.NewClient(cfg.RedisURL)
}

func newStore(client redis.UniversalClient, log zerolog.Logger) domaincache.Store {
	return infracache.NewRedisStore(client, log)
}

func newLocker(cfg *config.Config, client redis.UniversalClient, log zerolog.Logger) domaincache.Locker {
	if cfg.SessionLockEnabled {
		return infracache.NewRedisLocker(client, cfg.SessionLockExpiry, log)
	}
	return domaincache.NopLocker{}
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newFAQService(repo faq.Repository, store domaincache.Store, cfg *config.Config, log zerolog.Logger) *faq.Service {
	return faq.NewService(repo, store, faq.ServiceConfig{
		MaxResults: cfg.FAQMaxResults,
		CacheTTL:   cfg.FAQCacheTTL,
	}, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(llmprovider.Config{
		BaseURL: cfg.LLMAPIURL,
		APIKey:  cfg.LLMAPIKey,
		Timeout: cfg.LLMTimeout,
		Title:   cfg.ServiceName,
	})
}

func newGenerator(cfg *config.Config, provider llm.Provider, log zerolog.Logger) *llm.Generator {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.LLMMaxAttempts
	return llm.NewGenerator(provider, policy, llm.Options{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}, log)
}

func newPromptBuilder(cfg *config.Config, log zerolog.Logger) *prompt.Builder {
	promptCfg := prompt.DefaultConfig()
	promptCfg.MaxFAQs = cfg.FAQMaxResults
	return prompt.NewBuilder(promptCfg, log)
}

func newChatService(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	faqs conversation.FAQRetriever,
	generator conversation.ReplyGenerator,
	builder *prompt.Builder,
	store domaincache.Store,
	locker domaincache.Locker,
	cfg *config.Config,
	log zerolog.Logger,
) *conversation.Service {
	return conversation.NewService(conversations, messages, faqs, generator, builder, store, locker,
		conversation.ServiceConfig{
			Model:            cfg.LLMModel,
			HistoryLimit:     cfg.HistoryLimit,
			HistoryTTL:       cfg.ConversationCacheTTL,
			MaxMessageLength: cfg.MaxMessageLength,
		}, log)
}

func newRateLimiter(cfg *config.Config, client redis.UniversalClient, log zerolog.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Enabled:   cfg.RateLimitEnabled,
		Window:    cfg.RateLimitWindow,
		Max:       cfg.RateLimitMax,
		HourlyMax: cfg.RateLimitHourlyMax,
	}, log)
}

func newScheduler(cfg *config.Config, faqs *faq.Service, log zerolog.Logger) *crontab.Crontab {
	return crontab.NewCrontab(faqs, crontab.Config{
		Enabled:  cfg.FAQWarmupEnabled,
		Interval: cfg.FAQWarmupInterval,
	}, log)
}
