package llm_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openai "github.com/sashabaranov/go-openai"

	"github.com/supportchat/chat-api/internal/domain/llm"
	"github.com/supportchat/chat-api/internal/domain/retry"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// scriptedProvider returns each scripted outcome in order.
type scriptedProvider struct {
	outcomes    []outcome
	calls       int
	lastRequest openai.ChatCompletionRequest
}

type outcome struct {
	resp *openai.ChatCompletionResponse
	err  error
}

func (p *scriptedProvider) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	o := p.outcomes[p.calls]
	p.calls++
	p.lastRequest = req
	return o.resp, o.err
}

func completion(content string, tokens int) *openai.ChatCompletionResponse {
	return &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{TotalTokens: tokens},
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newGenerator(p llm.Provider, policy retry.Policy) *llm.Generator {
	return llm.NewGenerator(p, policy, llm.Options{Model: "test-model", MaxTokens: 300}, zerolog.Nop())
}

func TestGenerate_SucceedsFirstAttempt(t *testing.T) {
	provider := &scriptedProvider{outcomes: []outcome{
		{resp: completion("Hi there!", 42)},
	}}

	result, err := newGenerator(provider, fastPolicy()).Generate(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "Hi there!", result.Content)
	assert.Equal(t, 42, result.TokensUsed)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerate_RetriesRateLimitThenSucceeds(t *testing.T) {
	rateLimited := apperrors.New(apperrors.KindLLMService, "rate limit exceeded").WithRetriable(true)
	provider := &scriptedProvider{outcomes: []outcome{
		{err: rateLimited},
		{err: rateLimited},
		{resp: completion("third time lucky", 10)},
	}}

	result, err := newGenerator(provider, fastPolicy()).Generate(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "third time lucky", result.Content)
	assert.Equal(t, 3, provider.calls, "exactly two retries expected")
}

func TestGenerate_FatalErrorDoesNotRetry(t *testing.T) {
	unauthorized := apperrors.New(apperrors.KindLLMService, "invalid api key").WithRetriable(false)
	provider := &scriptedProvider{outcomes: []outcome{
		{err: unauthorized},
	}}

	_, err := newGenerator(provider, fastPolicy()).Generate(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, 1, provider.calls, "fatal failures must not be retried")
	assert.False(t, apperrors.IsRetriable(err), "fatal classification must survive wrapping")
	assert.Equal(t, apperrors.KindLLMService, apperrors.KindOf(err))
}

func TestGenerate_ExhaustedRetriesStayRetriable(t *testing.T) {
	down := apperrors.New(apperrors.KindLLMService, "upstream 503").WithRetriable(true)
	provider := &scriptedProvider{outcomes: []outcome{
		{err: down}, {err: down}, {err: down},
	}}

	_, err := newGenerator(provider, fastPolicy()).Generate(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.True(t, apperrors.IsRetriable(err), "exhausted transient failures surface as retriable")
}

func TestGenerate_EmptyChoicesIsFatal(t *testing.T) {
	provider := &scriptedProvider{outcomes: []outcome{
		{resp: &openai.ChatCompletionResponse{}},
	}}

	_, err := newGenerator(provider, fastPolicy()).Generate(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, apperrors.IsRetriable(err))
}

func TestHealthCheck_SingleAttemptNoRetry(t *testing.T) {
	down := apperrors.New(apperrors.KindLLMService, "upstream 503").WithRetriable(true)
	provider := &scriptedProvider{outcomes: []outcome{
		{err: down},
	}}
	gen := newGenerator(provider, fastPolicy())

	err := gen.HealthCheck(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, provider.calls, "probe must not retry")
	assert.Equal(t, 1, provider.lastRequest.MaxTokens)
	require.Len(t, provider.lastRequest.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, provider.lastRequest.Messages[0].Role)
}

func TestGenerate_ContextCancelledDuringBackoff(t *testing.T) {
	down := apperrors.New(apperrors.KindLLMService, "timeout").WithRetriable(true)
	provider := &scriptedProvider{outcomes: []outcome{
		{err: down}, {err: down}, {err: down},
	}}
	gen := llm.NewGenerator(provider, retry.Policy{MaxAttempts: 3, InitialDelay: time.Minute}, llm.Options{Model: "m"}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := gen.Generate(ctx, nil)

	require.Error(t, err)
	assert.Equal(t, 1, provider.calls)
}
