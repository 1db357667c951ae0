package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIChat implements ChatCompleter against the OpenAI chat-completion API
// (or any OpenAI-compatible gateway via base URL override). The pipeline uses
// one instance for routing, summarization and answer generation; only the
// request temperature differs.
type OpenAIChat struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.ChatCompleter = (*OpenAIChat)(nil)

// NewOpenAIChat creates an OpenAI chat adapter. Empty apiKey falls back to
// OPENAI_API_KEY, empty model to the default.
func NewOpenAIChat(apiKey, baseURL, model string, logger *zap.Logger) (*OpenAIChat, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	return &OpenAIChat{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}, nil
}

// Complete issues a single chat-completion call and returns the raw text of
// the first choice.
func (o *OpenAIChat) Complete(ctx context.Context, req repositories.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", llmError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// llmError surfaces the upstream HTTP status; failures are not retried.
func llmError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("LLM failed: %d", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("LLM failed: %d", reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("LLM failed: %w", err)
}
