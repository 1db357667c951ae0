package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// routerSystemPrompt constrains the model to the four category labels and the
// required JSON shape. Deterministic: the call runs at temperature 0.
const routerSystemPrompt = `Tu es le routeur d'intentions de l'assistant vocal iAsted.
Classe le texte utilisateur (entre les marqueurs ###USER### et ###END###) dans
exactement une de ces catégories :
- "voice_command" : commande de navigation ou d'action sur le tableau de bord
- "ask_resume" : demande de résumé de la conversation
- "query" : question sur les données de pêche
- "small_talk" : salutation ou conversation légère

Réponds UNIQUEMENT avec un objet JSON de cette forme, sans autre texte :
{"category": "<categorie>", "command": "<commande optionnelle>", "args": {}}`

const (
	userTextOpenMarker  = "###USER###"
	userTextCloseMarker = "###END###"
)

// IntentRouter classifies user text with a single constrained-output LLM call.
type IntentRouter struct {
	llm    repositories.ChatCompleter
	logger *zap.Logger
}

// NewIntentRouter creates an intent router.
func NewIntentRouter(llm repositories.ChatCompleter, logger *zap.Logger) *IntentRouter {
	return &IntentRouter{llm: llm, logger: logger}
}

// Classify never fails: any model error or malformed output resolves to the
// default query intent. Intent misclassification must not block a response.
func (r *IntentRouter) Classify(ctx context.Context, userText string) entities.Intent {
	// Delimiter markers reduce prompt injection risk from the user text.
	wrapped := userTextOpenMarker + "\n" + userText + "\n" + userTextCloseMarker

	raw, err := r.llm.Complete(ctx, repositories.CompletionRequest{
		Messages: []repositories.ChatMessage{
			{Role: repositories.SystemRole, Content: routerSystemPrompt},
			{Role: repositories.UserRole, Content: wrapped},
		},
		Temperature: 0,
		MaxTokens:   200,
	})
	if err != nil {
		r.logger.Warn("Router call failed, defaulting to query", zap.Error(err))
		return entities.DefaultIntent()
	}

	intent := ParseIntent(raw)
	r.logger.Info("Intent classified",
		zap.String("category", string(intent.Category)),
		zap.String("command", intent.Command))
	return intent
}

// ParseIntent parses the model's raw output into an Intent, defaulting to
// query on any malformed JSON or unknown category.
func ParseIntent(raw string) entities.Intent {
	cleaned := strings.TrimSpace(raw)
	// Tolerate a fenced answer despite the prompt instructions.
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var intent entities.Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return entities.DefaultIntent()
	}
	return intent.Normalize()
}
