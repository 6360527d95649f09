package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/metrics"
	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/pkg/circuitbreaker"
	"github.com/launchmap/backend/pkg/logger"
	"github.com/launchmap/backend/pkg/retry"
)

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	breaker     *circuitbreaker.Breaker
	retryConfig retry.Config
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	if timeoutSec == 0 {
		timeoutSec = 45
	}

	breaker := circuitbreaker.New("llm", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Logger:       logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		breaker:     breaker,
		retryConfig: retryConfig,
	}
}

// Model reports the configured model name, recorded alongside generated
// strategies.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	var result *CompletionResponse

	err := c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))

			result = &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// GenerateMarketingStrategy produces launch-marketing guidance for a brand.
// The response is returned as-is; the handler stores it verbatim.
func (c *Client) GenerateMarketingStrategy(ctx context.Context, brand *models.Brand) (string, error) {
	systemPrompt := `You are a direct-to-consumer apparel marketing strategist.
Produce a practical launch marketing plan for a new brand.

Structure:
1. Positioning statement (one sentence)
2. Three content pillars for organic social
3. Paid acquisition plan for the first 90 days with budget split
4. Launch-week email/SMS sequence outline
5. One collaboration or community play

Be concrete. Name channels, formats and cadences. No generic advice.`

	userPrompt := fmt.Sprintf(`Brand: %s
Category: %s
Target audience: %s
Brand colors: %s / %s

Write the launch marketing plan.`,
		brand.Name, brand.Category, brand.TargetAudience, brand.PrimaryColor, brand.SecondaryColor)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.7,
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate marketing strategy: %w", err)
	}

	logger.Info("Marketing strategy generated",
		zap.String("brand_id", brand.ID),
		zap.Int("length", len(resp.Content)),
	)

	return resp.Content, nil
}

// SuggestBrandIdentity proposes names and a tagline for a category and
// audience. Returns the raw suggestion text.
func (c *Client) SuggestBrandIdentity(ctx context.Context, category, audience string) (string, error) {
	systemPrompt := `You are a brand naming consultant for apparel startups.
Suggest 5 brand names with one-line rationales, then one tagline for the strongest name.
Names must be short, pronounceable, and plausibly available as a .com domain.`

	userPrompt := fmt.Sprintf("Category: %s\nTarget audience: %s", category, audience)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.9,
		MaxTokens:    600,
	})

	if err != nil {
		return "", fmt.Errorf("failed to suggest brand identity: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}
