package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiChat implements ChatCompleter using Google's Gemini API. Alternate
// provider to OpenAI, selected with LLM_PROVIDER.
type GeminiChat struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.ChatCompleter = (*GeminiChat)(nil)

// NewGeminiChat creates a new Gemini chat adapter.
func NewGeminiChat(ctx context.Context, logger *zap.Logger) (*GeminiChat, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiChat{
		client: client,
		model:  defaultGeminiModel,
		logger: logger,
	}, nil
}

// Complete issues a single generation call. System messages become the system
// instruction; assistant messages map to the model role.
func (g *GeminiChat) Complete(ctx context.Context, req repositories.CompletionRequest) (string, error) {
	var system string
	var contents []*genai.Content

	for _, m := range req.Messages {
		switch m.Role {
		case repositories.SystemRole:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case repositories.AssistantRole:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("LLM failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("LLM returned empty response")
	}
	return text, nil
}
