package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 1000
)

// ModelClient sends one system instruction and prompt to a language model and returns its text reply
type ModelClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// OpenAICompatClient talks to any OpenAI-compatible chat completions API, Groq by default
type OpenAICompatClient struct {
	client *openai.Client
	model  string
}

// NewOpenAICompatClient creates a chat completions client; an empty baseURL keeps the library default
func NewOpenAICompatClient(apiKey, baseURL, model string, httpClient *http.Client) *OpenAICompatClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAICompatClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (c *OpenAICompatClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicClient talks to the Anthropic messages API
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a messages API client
func NewAnthropicClient(apiKey, baseURL, model string, httpClient *http.Client) *AnthropicClient {
	options := make([]anthropic.ClientOption, 0, 2)
	if baseURL != "" {
		options = append(options, anthropic.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		options = append(options, anthropic.WithHTTPClient(httpClient))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey, options...),
		model:  model,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(analysisTemperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      system,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens:   analysisMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("messages request failed: %w", err)
	}
	return resp.GetFirstContentText(), nil
}

// NewModelClient selects the provider named by LLM_PROVIDER.
// It returns nil when no API key is configured; analysis then reports missing credentials.
func NewModelClient(cfg *config.Config, httpClients *shared.HTTPClientFactory) (ModelClient, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "ModelClient",
		"provider":  cfg.LLMProvider,
		"model":     cfg.GetLLMModel(),
	})

	if cfg.LLMAPIKey == "" {
		logger.Warn("No LLM API key configured, price analysis is disabled")
		return nil, nil
	}

	var httpClient *http.Client
	if httpClients != nil {
		httpClient = httpClients.Client(cfg.GetLLMTimeout())
	}

	switch cfg.LLMProvider {
	case config.ProviderGroq, config.ProviderOpenAI, "":
		logger.Info("Using OpenAI-compatible model client")
		return NewOpenAICompatClient(cfg.LLMAPIKey, cfg.GetLLMBaseURL(), cfg.GetLLMModel(), httpClient), nil
	case config.ProviderAnthropic:
		logger.Info("Using Anthropic model client")
		return NewAnthropicClient(cfg.LLMAPIKey, cfg.GetLLMBaseURL(), cfg.GetLLMModel(), httpClient), nil
	default:
		return nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, "UNKNOWN_LLM_PROVIDER",
			fmt.Sprintf("unknown LLM_PROVIDER %q", cfg.LLMProvider), "ModelClient", "new_model_client", false, nil)
	}
}
