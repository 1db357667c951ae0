package repositories

import "context"

// Role defines the type of message sender in a chat-completion call.
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
	SystemRole    Role = "system"
)

// ChatMessage is a single message in a chat-completion request.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest holds the parameters for one chat-completion call.
// The pipeline issues these with different temperatures: 0 for deterministic
// routing and summarization, 0.7 for the conversational answer.
type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
}

// ChatCompleter abstracts any chat/LLM provider.
type ChatCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
