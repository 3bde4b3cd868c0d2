package faq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/domain/cache"
	"github.com/supportchat/chat-api/internal/infrastructure/metrics"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// ServiceConfig bounds retrieval and caching behavior.
type ServiceConfig struct {
	MaxResults int
	CacheTTL   time.Duration
}

// Service retrieves relevant FAQ entries for a user message and manages
// knowledge-base entries.
type Service struct {
	repo  Repository
	cache cache.Store
	cfg   ServiceConfig
	log   zerolog.Logger
}

// NewService builds the FAQ service.
func NewService(repo Repository, store cache.Store, cfg ServiceConfig, log zerolog.Logger) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &Service{
		repo:  repo,
		cache: store,
		cfg:   cfg,
		log:   log.With().Str("component", "faq-service").Logger(),
	}
}

// RetrieveRelevant returns up to MaxResults active entries ranked by
// relevance for the user message. Retrieval is best-effort: failures are
// logged and surfaced as an empty result so a chat turn never dies here.
func (s *Service) RetrieveRelevant(ctx context.Context, userMessage string) []FAQ {
	keywords := ExtractKeywords(userMessage)
	if len(keywords) == 0 {
		// Message was all stop words or punctuation; nothing to match.
		return nil
	}

	cacheKey := cache.FAQKey(userMessage)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var faqs []FAQ
		if err := json.Unmarshal([]byte(cached), &faqs); err == nil {
			metrics.CacheHits.WithLabelValues("faq").Inc()
			return faqs
		}
		s.cache.Delete(ctx, cacheKey)
	}
	metrics.CacheMisses.WithLabelValues("faq").Inc()

	start := time.Now()
	faqs, err := s.repo.SearchHybrid(ctx, BuildTsQuery(keywords), keywords, s.cfg.MaxResults)
	metrics.FAQSearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error().Err(err).Int("keywords", len(keywords)).Msg("FAQ retrieval failed, degrading to empty result")
		return nil
	}

	if payload, err := json.Marshal(faqs); err == nil {
		s.cache.Set(ctx, cacheKey, string(payload), s.cfg.CacheTTL)
	}

	s.log.Debug().
		Int("message_length", len(userMessage)).
		Int("faq_count", len(faqs)).
		Msg("FAQs retrieved for user message")
	return faqs
}

// Create adds a knowledge-base entry.
func (s *Service) Create(ctx context.Context, entry *FAQ) error {
	if entry.Question == "" || entry.Answer == "" {
		return apperrors.New(apperrors.KindValidation, "question and answer are required")
	}
	entry.IsActive = true
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}
	s.log.Info().Uint("id", entry.ID).Msg("FAQ created")
	return nil
}

// Get fetches a single entry by id.
func (s *Service) Get(ctx context.Context, id uint) (*FAQ, error) {
	return s.repo.FindByID(ctx, id)
}

// ListActive returns all active entries ordered by priority then recency,
// served from the warmup cache when present.
func (s *Service) ListActive(ctx context.Context) ([]FAQ, error) {
	if cached, ok := s.cache.Get(ctx, cache.ActiveFAQsKey); ok {
		var faqs []FAQ
		if err := json.Unmarshal([]byte(cached), &faqs); err == nil {
			metrics.CacheHits.WithLabelValues("faq_listing").Inc()
			return faqs, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("faq_listing").Inc()

	faqs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(faqs); err == nil {
		s.cache.Set(ctx, cache.ActiveFAQsKey, string(payload), s.cfg.CacheTTL)
	}
	return faqs, nil
}

// ListByCategory returns active entries in a category.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]FAQ, error) {
	return s.repo.ListByCategory(ctx, category, 10)
}

// Update applies a partial mutation and invalidates the listing cache.
func (s *Service) Update(ctx context.Context, id uint, update Update) (*FAQ, error) {
	entry, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, cache.ActiveFAQsKey)
	s.log.Info().Uint("id", id).Msg("FAQ updated")
	return entry, nil
}

// Deactivate soft-deletes an entry; it is never hard-deleted in normal flow.
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, cache.ActiveFAQsKey)
	s.log.Info().Uint("id", id).Msg("FAQ deactivated")
	return nil
}

// WarmListingCache refreshes the active-FAQ listing cache. Called from the
// scheduled warmup job.
func (s *Service) WarmListingCache(ctx context.Context) error {
	faqs, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(faqs)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, cache.ActiveFAQsKey, string(payload), s.cfg.CacheTTL)
	s.log.Debug().Int("count", len(faqs)).Msg("active FAQ listing cache warmed")
	return nil
}
