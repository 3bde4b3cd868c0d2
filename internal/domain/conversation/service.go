package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/supportchat/chat-api/internal/domain/cache"
	"github.com/supportchat/chat-api/internal/domain/faq"
	"github.com/supportchat/chat-api/internal/domain/llm"
	"github.com/supportchat/chat-api/internal/domain/prompt"
	"github.com/supportchat/chat-api/internal/infrastructure/metrics"
	"github.com/supportchat/chat-api/internal/infrastructure/observability"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// FAQRetriever surfaces knowledge-base entries relevant to a user message.
type FAQRetriever interface {
	RetrieveRelevant(ctx context.Context, userMessage string) []faq.FAQ
}

// ReplyGenerator produces the assistant reply for an assembled prompt.
type ReplyGenerator interface {
	Generate(ctx context.Context, messages []openai.ChatCompletionMessage) (*llm.Result, error)
}

// ServiceConfig bounds a chat turn.
type ServiceConfig struct {
	Model            string
	HistoryLimit     int
	HistoryTTL       time.Duration
	MaxMessageLength int
}

// Service orchestrates a chat turn: session resolution, history assembly,
// FAQ retrieval, generation, and persistence of both sides of the exchange.
type Service struct {
	conversations Repository
	messages      MessageRepository
	faqs          FAQRetriever
	generator     ReplyGenerator
	builder       *prompt.Builder
	store         cache.Store
	locker        cache.Locker
	cfg           ServiceConfig
	log           zerolog.Logger
}

// NewService wires the chat orchestrator.
func NewService(
	conversations Repository,
	messages MessageRepository,
	faqs FAQRetriever,
	generator ReplyGenerator,
	builder *prompt.Builder,
	store cache.Store,
	locker cache.Locker,
	cfg ServiceConfig,
	log zerolog.Logger,
) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = 5 * time.Minute
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 2000
	}
	if locker == nil {
		locker = cache.NopLocker{}
	}
	return &Service{
		conversations: conversations,
		messages:      messages,
		faqs:          faqs,
		generator:     generator,
		builder:       builder,
		store:         store,
		locker:        locker,
		cfg:           cfg,
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// SendInput is one inbound user turn. Metadata is persisted onto the
// conversation when this turn opens it.
type SendInput struct {
	SessionID      string
	Message        string
	UserIdentifier *string
	Metadata       map[string]any
}

// SendResult is the outcome of a completed chat turn.
type SendResult struct {
	SessionID           string
	Reply               Message
	ConversationCreated bool
}

// SendMessage runs a full chat turn. The user message is persisted before
// generation is attempted, so a failed generation still leaves the question
// on record; the error then propagates with its original classification.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (*SendResult, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := observability.StartTurnSpan(ctx, in.SessionID)
	defer span.End()

	unlock := s.locker.Lock(ctx, "session:"+in.SessionID)
	defer unlock()

	conv, created, err := s.conversations.GetOrCreate(ctx, in.SessionID, in.UserIdentifier, in.Metadata)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		observability.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to resolve conversation")
	}

	history := s.loadHistory(ctx, conv.ID)

	userMsg := &Message{
		PublicID:       uuid.New(),
		ConversationID: conv.ID,
		Role:           RoleUser,
		Content:        in.Message,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to store user message")
	}
	s.store.Delete(ctx, cache.HistoryKey(conv.ID))

	relevant := s.faqs.RetrieveRelevant(ctx, in.Message)
	messages := s.builder.Build(in.Message, relevant, history)

	genStart := time.Now()
	result, err := s.generator.Generate(ctx, messages)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("llm_error").Inc()
		observability.RecordError(span, err)
		return nil, err
	}

	assistantMsg := &Message{
		PublicID:       uuid.New(),
		ConversationID: conv.ID,
		Role:           RoleAssistant,
		Content:        result.Content,
		TokensUsed:     &result.TokensUsed,
		Metadata: map[string]interface{}{
			"model":      s.cfg.Model,
			"faqs_used":  len(relevant),
			"latency_ms": time.Since(genStart).Milliseconds(),
		},
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to store assistant message")
	}
	s.store.Delete(ctx, cache.HistoryKey(conv.ID))

	if err := s.conversations.Touch(ctx, conv.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", in.SessionID).Msg("failed to touch conversation")
	}

	metrics.ChatTurnsTotal.WithLabelValues("ok").Inc()
	metrics.ChatTurnDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Bool("chat.conversation_created", created),
		attribute.Int("chat.faqs_used", len(relevant)),
		attribute.Int("chat.tokens_used", result.TokensUsed),
	)
	s.log.Info().
		Str("session_id", in.SessionID).
		Bool("conversation_created", created).
		Int("faqs_used", len(relevant)).
		Int("tokens_used", result.TokensUsed).
		Dur("duration", time.Since(start)).
		Msg("chat turn completed")

	return &SendResult{
		SessionID:           in.SessionID,
		Reply:               *assistantMsg,
		ConversationCreated: created,
	}, nil
}

func (s *Service) validate(in SendInput) error {
	if strings.TrimSpace(in.SessionID) == "" {
		return apperrors.New(apperrors.KindValidation, "session_id is required")
	}
	trimmed := strings.TrimSpace(in.Message)
	if trimmed == "" {
		return apperrors.New(apperrors.KindValidation, "message must not be empty")
	}
	if len([]rune(in.Message)) > s.cfg.MaxMessageLength {
		return apperrors.New(apperrors.KindValidation,
			fmt.Sprintf("message exceeds maximum length of %d characters", s.cfg.MaxMessageLength))
	}
	return nil
}

// cachedMessage is the wire form of a history entry in the cache.
type cachedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// loadHistory returns the most recent turns, newest last. The cache is
// consulted first; on a miss the database is queried and the result cached.
// Failures degrade to an empty history rather than failing the turn.
func (s *Service) loadHistory(ctx context.Context, conversationID uint) []prompt.HistoryEntry {
	key := cache.HistoryKey(conversationID)

	if raw, ok := s.store.Get(ctx, key); ok {
		var cached []cachedMessage
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			metrics.CacheHits.WithLabelValues("history").Inc()
			return toHistoryEntries(cached)
		}
		s.store.Delete(ctx, key)
	}
	metrics.CacheMisses.WithLabelValues("history").Inc()

	rows, err := s.messages.ListRecent(ctx, conversationID, s.cfg.HistoryLimit)
	if err != nil {
		s.log.Warn().Err(err).Uint("conversation_id", conversationID).
			Msg("history load failed, continuing without context")
		return nil
	}

	cached := make([]cachedMessage, len(rows))
	for i, row := range rows {
		cached[i] = cachedMessage{Role: row.Role, Content: row.Content}
	}
	if data, err := json.Marshal(cached); err == nil {
		s.store.Set(ctx, key, string(data), s.cfg.HistoryTTL)
	}
	return toHistoryEntries(cached)
}

func toHistoryEntries(cached []cachedMessage) []prompt.HistoryEntry {
	entries := make([]prompt.HistoryEntry, len(cached))
	for i, msg := range cached {
		entries[i] = prompt.HistoryEntry{Role: msg.Role, Content: msg.Content}
	}
	return entries
}

// HistoryPage is one page of a conversation's messages, oldest first.
type HistoryPage struct {
	Conversation  *Conversation
	Messages      []Message
	TotalMessages int64
	HasMore       bool
	NextCursor    uint
}

// GetHistory pages through a conversation's messages, newest page first.
// A zero beforeID starts from the most recent message.
func (s *Service) GetHistory(ctx context.Context, sessionID string, limit int, beforeID uint) (*HistoryPage, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}

	conv, err := s.conversations.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.messages.ListBefore(ctx, conv.ID, beforeID, limit+1)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to load messages")
	}

	total, err := s.messages.CountByConversation(ctx, conv.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to count messages")
	}

	page := &HistoryPage{Conversation: conv, TotalMessages: total}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[len(rows)-limit:]
	}
	page.Messages = rows
	if page.HasMore && len(rows) > 0 {
		page.NextCursor = rows[0].ID
	}
	return page, nil
}

// DeleteConversation removes a conversation, its messages, and any cached
// history for it.
func (s *Service) DeleteConversation(ctx context.Context, sessionID string) error {
	conv, err := s.conversations.FindBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.conversations.DeleteBySessionID(ctx, sessionID); err != nil {
		return apperrors.Wrap(err, apperrors.KindStorage, "failed to delete conversation")
	}
	s.store.Delete(ctx, cache.HistoryKey(conv.ID))
	s.log.Info().Str("session_id", sessionID).Msg("conversation deleted")
	return nil
}
