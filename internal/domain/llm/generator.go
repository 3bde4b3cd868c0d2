package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/supportchat/chat-api/internal/domain/retry"
	"github.com/supportchat/chat-api/internal/infrastructure/metrics"
	"github.com/supportchat/chat-api/internal/infrastructure/observability"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// Generator drives chat-completion attempts through the retry state machine.
type Generator struct {
	provider Provider
	policy   retry.Policy
	opts     Options
	log      zerolog.Logger
}

// NewGenerator builds a generator with the given retry policy and request options.
func NewGenerator(provider Provider, policy retry.Policy, opts Options, log zerolog.Logger) *Generator {
	return &Generator{
		provider: provider,
		policy:   policy,
		opts:     opts,
		log:      log.With().Str("component", "llm-generator").Logger(),
	}
}

// Generate runs the prompt through the upstream API, retrying classified
// transient failures with capped exponential backoff. The returned error is
// always an apperrors LLM-service error whose retriable flag carries the
// classification of the last failure: exhausted transient failures stay
// retriable so the HTTP layer can signal "try again", while fatal failures
// (bad credentials, malformed responses) do not.
func (g *Generator) Generate(ctx context.Context, messages []openai.ChatCompletionMessage) (*Result, error) {
	machine := retry.NewMachine(g.policy)

	ctx, span := observability.StartCompletionSpan(ctx, g.opts.Model, len(messages))
	defer span.End()

	for {
		attempt := machine.Attempt()
		result, err := g.attempt(ctx, messages)

		transition := machine.Observe(err, apperrors.IsRetriable(err))
		switch transition.State {
		case retry.StateSucceeded:
			metrics.LLMAttemptsTotal.WithLabelValues("success").Inc()
			g.log.Info().
				Int("attempt", attempt).
				Str("model", g.opts.Model).
				Int("tokens_used", result.TokensUsed).
				Msg("chat completion generated")
			return result, nil

		case retry.StateRetrying:
			metrics.LLMAttemptsTotal.WithLabelValues("retried").Inc()
			observability.AddRetryEvent(span, attempt, err.Error())
			g.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("backoff", transition.Delay).
				Msg("chat completion failed, retrying")
			if sleepErr := sleep(ctx, transition.Delay); sleepErr != nil {
				return nil, apperrors.Wrap(sleepErr, apperrors.KindLLMService, "chat completion cancelled").
					WithRetriable(false)
			}

		case retry.StateFailed:
			metrics.LLMAttemptsTotal.WithLabelValues("failed").Inc()
			observability.RecordError(span, err)
			g.log.Error().
				Err(err).
				Int("attempt", attempt).
				Bool("exhausted", transition.Exhausted).
				Msg("chat completion failed")
			return nil, apperrors.Wrap(err, apperrors.KindLLMService,
				"AI service temporarily unavailable, please try again").
				WithRetriable(apperrors.IsRetriable(err))
		}
	}
}

// attempt performs one upstream call and validates the response shape.
func (g *Generator) attempt(ctx context.Context, messages []openai.ChatCompletionMessage) (*Result, error) {
	resp, err := g.provider.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.opts.Model,
		Messages:    messages,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.New(apperrors.KindLLMService, "no completion choices returned").
			WithRetriable(false)
	}

	return &Result{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck issues a minimal single-message completion to probe the
// upstream API without retries.
func (g *Generator) HealthCheck(ctx context.Context) error {
	probe := NewGenerator(g.provider, retry.NoRetryPolicy(), Options{
		Model:     g.opts.Model,
		MaxTokens: 1,
	}, g.log)
	_, err := probe.Generate(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Hello"},
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
