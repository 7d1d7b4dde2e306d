// Package vision asks a vision-capable chat model for a nutrition estimate of a meal photo.
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
)

const defaultMaxTokens = 1000

// Analyzer produces a nutrition analysis for an image URL.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (*model.NutritionAnalysis, error)
}

// Client is an Analyzer backed by the OpenAI chat completions API.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *zap.Logger
}

var _ Analyzer = (*Client)(nil)

// NewClient builds a Client. SDK retries are disabled; a failed call is final.
func NewClient(cfg config.VisionConfig, baseLogger *zap.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{}),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		logger:    baseLogger.Named("vision"),
	}
}

// Analyze sends the image to the model and returns the parsed result.
// Any failure returns nil and an error wrapping apperrors.ErrAnalysisUnavailable.
func (c *Client) Analyze(ctx context.Context, imageURL string) (analysis *model.NutritionAnalysis, err error) {
	start := time.Now()
	log := logger.FromContextOr(ctx, c.logger).With(zap.String("model", c.model))
	defer func() {
		observer.ObserveAnalysis(time.Since(start), err)
		if err != nil {
			log.Warn("Nutrition analysis failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return
		}
		log.Info("Nutrition analysis completed",
			zap.Int("foods", len(analysis.Foods)),
			zap.Int("health_score", analysis.HealthScore),
			zap.Duration("duration", time.Since(start)))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(userPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageURL}),
			}),
		},
	})
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model reply has no choices", apperrors.ErrAnalysisUnavailable)
	}

	log.Debug("Model reply received", zap.Int("length", len(resp.Choices[0].Message.Content)))
	return ParseReply(resp.Choices[0].Message.Content)
}

func classifyRequestError(ctx context.Context, err error) error {
	var apiErr *openai.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: model request timeout: %w", apperrors.ErrAnalysisUnavailable, apperrors.ErrTimeout)
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: model returned status %d", apperrors.ErrAnalysisUnavailable, apiErr.StatusCode)
	default:
		return fmt.Errorf("%w: model request failed: %v", apperrors.ErrAnalysisUnavailable, err)
	}
}
