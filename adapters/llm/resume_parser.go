package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/metrics"
)

var (
	ErrNoChoices   = errors.New("llm returned no chat choices")
	ErrBreakerOpen = errors.New("llm circuit breaker is open")
)

type resumeParserAdapter struct {
	client      *openai.Client
	breaker     *gobreaker.CircuitBreaker[string]
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	jsonMode    bool
	log         logger.Logger
}

// NewResumeParser talks to any OpenAI compatible chat completion endpoint,
// Groq by default.
func NewResumeParser(cfg config.Config, log logger.Logger) (service.ResumeParser, error) {
	if cfg.LLM.BaseURL == "" {
		return nil, fmt.Errorf("llm base_url is not configured")
	}
	if cfg.LLM.Model == "" {
		return nil, fmt.Errorf("llm model is not configured")
	}

	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		// local OpenAI compatible servers ignore the key but the client wants one
		apiKey = "dummy-key"
		log.Warn("LLM api key is empty, requests to hosted providers will be rejected")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.LLM.BaseURL

	a := &resumeParserAdapter{
		client:      openai.NewClientWithConfig(clientCfg),
		breaker:     newBreaker(cfg, log),
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
		timeout:     cfg.LLM.Timeout,
		jsonMode:    cfg.LLM.JSONMode,
		log:         log,
	}

	log.Info("Resume parser initialized", zap.String("base_url", cfg.LLM.BaseURL), zap.String("model", cfg.LLM.Model))
	return a, nil
}

func newBreaker(cfg config.Config, log logger.Logger) *gobreaker.CircuitBreaker[string] {
	cb := cfg.LLM.CircuitBreaker
	if !cb.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "llm-resume-parser",
		MaxRequests: cb.MaxRequests,
		Interval:    cb.Interval,
		Timeout:     cb.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cb.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cb.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}

// ParseResume sends a single request. There is no retry, callers fall back
// to default data on any error.
func (a *resumeParserAdapter) ParseResume(ctx context.Context, text string) (*portfolio.Resume, error) {
	content, err := a.complete(ctx, text)
	if err != nil {
		return nil, err
	}

	r, err := portfolio.DecodeResume(content)
	if err != nil {
		a.log.Warn("LLM output is not valid resume JSON", zap.Int("content_length", len(content)), zap.Error(err))
		return nil, err
	}
	return r, nil
}

func (a *resumeParserAdapter) complete(ctx context.Context, text string) (string, error) {
	if a.breaker == nil {
		return a.requestCompletion(ctx, text)
	}

	content, err := a.breaker.Execute(func() (string, error) {
		return a.requestCompletion(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	return content, err
}

func (a *resumeParserAdapter) requestCompletion(ctx context.Context, text string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: resumeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: resumeUserPrompt(text)},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
	if a.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
