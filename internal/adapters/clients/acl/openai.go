package acl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

const (
	chatCompletionsPath = "/v1/chat/completions"

	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-3.5-turbo"
)

// OpenAIClientConfig contains configuration for the OpenAI client.
type OpenAIClientConfig struct {
	// Client is the HTTP client. Its AuthFunc should set the bearer token
	// (see BearerAuth).
	Client *clients.Client

	// APIKey is only checked for presence; an empty key disables the client.
	APIKey string

	// Model is the chat model name.
	Model string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// OpenAIClient implements ports.TextGenerator using the chat completions API.
type OpenAIClient struct {
	BaseAdapter

	model      string
	configured bool
}

// NewOpenAIClient creates a chat completions adapter.
func NewOpenAIClient(cfg OpenAIClientConfig) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, "openai", cfg.Logger),
		model:       model,
		configured:  cfg.APIKey != "",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements ports.TextGenerator.
// Returns the trimmed content of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if !c.configured {
		return "", domain.NewUnavailableError(c.ServiceName(), "api key not configured")
	}

	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	body, err := c.PostJSON(ctx, chatCompletionsPath, payload, "chat completion")
	if err != nil {
		return "", err
	}

	resp, err := DecodeResponse[chatCompletionResponse](body)
	if err != nil {
		return "", MapDecodeError(c.ServiceName(), "chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewUnavailableError(c.ServiceName(), "completion has no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
