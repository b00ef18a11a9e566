package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/use-agent/scrapeai/config"
	"github.com/use-agent/scrapeai/models"
	"github.com/use-agent/scrapeai/schema"
)

// Client extracts listings through an OpenAI-compatible chat completion
// endpoint with strict structured output. It never retries.
type Client struct {
	api         openai.Client
	temperature float64
}

// NewClient creates a client from the LLM configuration.
// Pass a nil httpClient to use the SDK default.
func NewClient(cfg config.LLMConfig, httpClient *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		temperature: cfg.Temperature,
	}
}

// ExtractResult holds the LLM extraction output.
type ExtractResult struct {
	// Container is the parsed, schema-conforming result.
	Container *schema.Container

	// Raw is the JSON text returned by the model.
	Raw string

	// Usage is the token usage reported by the provider.
	Usage *models.LLMUsage
}

// Extract sends the page text and the container schema to model and parses
// the reply. Every failure is an EXTRACTION_FAILED error (or its auth and
// rate-limit refinements).
func (c *Client) Extract(ctx context.Context, text string, cs *schema.ContainerSchema, model string) (*ExtractResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(text)),
		},
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.ContainerName,
					Schema: cs.JSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	slog.Info("requesting extraction", "model", model, "fields", len(cs.Record.Fields()))

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyLLMError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "LLM returned no choices", nil)
	}

	msg := completion.Choices[0].Message
	if msg.Refusal != "" {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "LLM refused: "+msg.Refusal, nil)
	}

	container, err := cs.Parse([]byte(msg.Content))
	if err != nil {
		return nil, err
	}

	return &ExtractResult{
		Container: container,
		Raw:       msg.Content,
		Usage: &models.LLMUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

// classifyLLMError maps SDK and transport errors to ScrapeErrors.
func classifyLLMError(err error) *models.ScrapeError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return models.NewScrapeError(models.ErrCodeLLMAuthFailure, "LLM authentication failed: check your API key", err)
		case http.StatusTooManyRequests:
			return models.NewScrapeError(models.ErrCodeLLMRateLimited, "LLM rate limit exceeded", err)
		default:
			return models.NewScrapeError(models.ErrCodeExtraction, fmt.Sprintf("LLM API error (HTTP %d)", apiErr.StatusCode), err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewScrapeError(models.ErrCodeExtraction, "LLM request interrupted", err)
	}
	return models.NewScrapeError(models.ErrCodeExtraction, "LLM request failed", err)
}
