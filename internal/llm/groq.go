package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/logger"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel mirrors what the hosted application runs against.
	DefaultModel = "llama3-8b-8192"

	defaultTemperature = 0.1
	defaultMaxTokens   = 2048
)

// GroqConfig configures the Groq provider.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GroqProvider implements Provider against Groq's OpenAI-compatible chat
// completions API using the go-openai SDK with a base URL override.
type GroqProvider struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &GroqProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    logger.Default().WithPrefix("groq"),
	}, nil
}

func (p *GroqProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx).WithPrefix("groq")

	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if req.Schema != nil {
		// Groq honors json_object mode; the schema itself is enforced by
		// local validation below.
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	log.Debug("generating: model=%s, max_tokens=%d, schema=%v", p.model, maxTokens, req.Schema != nil)
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		log.Error("chat completion failed after %v: %v", time.Since(start), err)
		return nil, errors.NewUpstreamError(err)
	}
	if len(resp.Choices) == 0 {
		log.Error("chat completion returned no choices")
		return nil, errors.NewUpstreamError(fmt.Errorf("no choices in response"))
	}

	content := json.RawMessage(resp.Choices[0].Message.Content)
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			log.Warn("response failed schema validation: %v", err)
			return nil, err
		}
	}

	log.Debug("generation completed in %v: tokens=%d", time.Since(start), resp.Usage.TotalTokens)
	return &Response{
		Content: content,
		Model:   resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func (p *GroqProvider) ModelID() string {
	return p.model
}

// Ensure GroqProvider implements the interface
var _ Provider = (*GroqProvider)(nil)
