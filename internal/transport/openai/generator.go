package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
	"github.com/kailas-cloud/clausewise/internal/metrics"
)

const (
	generationTemperature = 0.1
	generationMaxTokens   = 1000
)

// Generator is a chat-completion provider using the OpenAI-compatible API.
// It tries the primary model first and retries once on the fallback model.
type Generator struct {
	client        *openai.Client
	primaryModel  string
	fallbackModel string
	logger        *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	Logger        *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:        openai.NewClientWithConfig(clientCfg),
		primaryModel:  cfg.PrimaryModel,
		fallbackModel: cfg.FallbackModel,
		logger:        cfg.Logger,
	}
}

// Generate implements domain.Generator. A fallback-model retry happens only
// when a fallback model is configured; when both models fail the primary
// model's error is the one returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	result, primaryErr := g.complete(ctx, g.primaryModel, prompt)
	if primaryErr == nil {
		return result, nil
	}

	if g.fallbackModel == "" || g.fallbackModel == g.primaryModel {
		return domain.GenerationResult{}, primaryErr
	}

	g.logger.Warn("Primary generation model failed, retrying on fallback",
		zap.String("primary_model", g.primaryModel),
		zap.String("fallback_model", g.fallbackModel),
		zap.Error(primaryErr))

	result, fallbackErr := g.complete(ctx, g.fallbackModel, prompt)
	if fallbackErr != nil {
		return domain.GenerationResult{}, primaryErr
	}
	return result, nil
}

func (g *Generator) complete(ctx context.Context, model, prompt string) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(model, "error").Inc()
		return domain.GenerationResult{}, parseGenerationAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf(
			"empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(model).Observe(duration.Seconds())

	return domain.GenerationResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// parseGenerationAPIError maps API failures onto domain sentinels.
// HTTP 429 becomes ErrGenerationRateLimited, everything else
// ErrGenerationProviderError.
func parseGenerationAPIError(err error) error {
	status := 0

	var reqErr *openai.RequestError
	var apiErr *openai.APIError
	var msg string
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		msg = string(reqErr.Body)
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		msg = apiErr.Message
	}

	if status == http.StatusTooManyRequests {
		return fmt.Errorf("generation API error %d: %s: %w",
			status, msg, domain.ErrGenerationRateLimited)
	}
	if status != 0 {
		return fmt.Errorf("generation API error %d: %s: %w",
			status, msg, domain.ErrGenerationProviderError)
	}
	return fmt.Errorf("generation request failed: %w", domain.ErrGenerationProviderError)
}
