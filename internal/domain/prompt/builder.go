// Package prompt assembles the role-tagged message sequence sent to the
// chat-completion API: system template, token-budgeted history, user turn.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/supportchat/chat-api/internal/domain/faq"
)

const (
	// tokenEstimateRatio approximates ~4 characters per token. A real
	// tokenizer is deliberately avoided; the estimate only has to be
	// conservative enough to stay inside the model's context window.
	tokenEstimateRatio = 4

	// minHistoryMessages is always kept when any history exists, even if
	// those messages alone exceed the budget.
	minHistoryMessages = 2

	// fallbackTailSize is how many trailing segments survive the aggressive
	// trim applied when the whole prompt overflows the global budget.
	fallbackTailSize = 5
)

// HistoryEntry is one prior conversation turn fed into the builder.
type HistoryEntry struct {
	Role    string
	Content string
}

// Config bounds the assembled prompt.
type Config struct {
	MaxFAQs          int
	MaxHistoryTokens int
	MaxTotalTokens   int
}

// DefaultConfig returns the budgets used in production.
func DefaultConfig() Config {
	return Config{
		MaxFAQs:          5,
		MaxHistoryTokens: 1200,
		MaxTotalTokens:   4000,
	}
}

// Builder deterministically assembles prompts.
type Builder struct {
	cfg Config
	log zerolog.Logger
}

// NewBuilder creates a prompt builder.
func NewBuilder(cfg Config, log zerolog.Logger) *Builder {
	if cfg.MaxFAQs <= 0 {
		cfg.MaxFAQs = 5
	}
	if cfg.MaxHistoryTokens <= 0 {
		cfg.MaxHistoryTokens = 1200
	}
	if cfg.MaxTotalTokens <= 0 {
		cfg.MaxTotalTokens = 4000
	}
	return &Builder{cfg: cfg, log: log.With().Str("component", "prompt-builder").Logger()}
}

// Build produces the ordered prompt: system segment with interpolated FAQs,
// trimmed history in chronological order, then the verbatim user message.
func (b *Builder) Build(userMessage string, faqs []faq.FAQ, history []HistoryEntry) []openai.ChatCompletionMessage {
	systemPrompt := strings.Replace(systemTemplate, "{faq_knowledge_base}", b.formatFAQs(faqs), 1)

	trimmed := b.truncateHistory(filterHistory(history), b.cfg.MaxHistoryTokens)

	messages := make([]openai.ChatCompletionMessage, 0, len(trimmed)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, trimmed...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	if total := estimateTotalTokens(messages); total > b.cfg.MaxTotalTokens {
		b.log.Warn().
			Int("total_tokens", total).
			Int("limit", b.cfg.MaxTotalTokens).
			Msg("token limit exceeded, applying aggressive trimming")
		return aggressiveTrim(messages)
	}

	b.log.Debug().
		Int("history_messages", len(trimmed)).
		Int("faq_count", len(faqs)).
		Msg("prompt built")
	return messages
}

// formatFAQs renders retrieved entries as numbered Q/A pairs.
func (b *Builder) formatFAQs(faqs []faq.FAQ) string {
	if len(faqs) == 0 {
		return emptyKnowledgeBase
	}

	if len(faqs) > b.cfg.MaxFAQs {
		faqs = faqs[:b.cfg.MaxFAQs]
	}

	blocks := make([]string, len(faqs))
	for i, entry := range faqs {
		category := "general"
		if entry.Category != nil && *entry.Category != "" {
			category = *entry.Category
		}
		blocks[i] = fmt.Sprintf("Q%d: [%s] %s\nA%d: %s", i+1, category, entry.Question, i+1, entry.Answer)
	}
	return strings.Join(blocks, "\n\n")
}

// filterHistory drops system rows and maps entries to API messages.
func filterHistory(history []HistoryEntry) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, entry := range history {
		if entry.Role == openai.ChatMessageRoleSystem {
			continue
		}
		out = append(out, openai.ChatCompletionMessage{Role: entry.Role, Content: entry.Content})
	}
	return out
}

// truncateHistory walks from the most recent message backward, keeping
// messages while they fit the budget. At least the last two survive when the
// history has them, even if they alone blow the budget.
func (b *Builder) truncateHistory(messages []openai.ChatCompletionMessage, maxTokens int) []openai.ChatCompletionMessage {
	var kept []openai.ChatCompletionMessage
	tokens := 0

	for i := len(messages) - 1; i >= 0; i-- {
		msgTokens := EstimateTokens(messages[i].Content)
		if tokens+msgTokens > maxTokens {
			break
		}
		kept = append([]openai.ChatCompletionMessage{messages[i]}, kept...)
		tokens += msgTokens
	}

	if len(kept) < minHistoryMessages && len(messages) >= minHistoryMessages {
		return messages[len(messages)-minHistoryMessages:]
	}
	return kept
}

// aggressiveTrim keeps the system segment plus the final segments of the
// original sequence. This is a coarse fallback: when the tail is dominated by
// history the current user turn can lose its position, which is accepted.
func aggressiveTrim(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	system := messages[0]
	tail := messages[1:]
	if len(tail) > fallbackTailSize {
		tail = tail[len(tail)-fallbackTailSize:]
	}
	return append([]openai.ChatCompletionMessage{system}, tail...)
}

// EstimateTokens estimates the token count of text as ceil(characters / 4).
func EstimateTokens(text string) int {
	runes := utf8.RuneCountInString(text)
	return (runes + tokenEstimateRatio - 1) / tokenEstimateRatio
}

func estimateTotalTokens(messages []openai.ChatCompletionMessage) int {
	total := 0
	for _, msg := range messages {
		total += EstimateTokens(msg.Content)
	}
	return total
}
