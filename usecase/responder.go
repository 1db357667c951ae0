package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// personaPrompt fixes the assistant's voice: short spoken-style answers with
// no structural formatting, in French for the ministry's agents.
const personaPrompt = `Tu es iAsted, l'assistant vocal du Ministère des Pêches du Gabon.
Tu aides les agents à consulter les statistiques de pêche, les licences et les
quittances du tableau de bord.

Règles de réponse :
- Réponds en français, en 1 à 3 phrases courtes, comme à l'oral.
- Pas de jargon technique, pas de markdown, pas de JSON, pas de liste à puces.
- Appuie-toi sur les données de référence fournies ; si une donnée manque,
  dis-le simplement.`

const answerTemperature = 0.7

// ResponseGenerator composes the answer prompt and calls the LLM.
type ResponseGenerator struct {
	llm    repositories.ChatCompleter
	logger *zap.Logger
}

// NewResponseGenerator creates a response generator.
func NewResponseGenerator(llm repositories.ChatCompleter, logger *zap.Logger) *ResponseGenerator {
	return &ResponseGenerator{llm: llm, logger: logger}
}

// Generate produces the spoken-style answer for the current user text. The
// system message concatenates persona, memory summary (when non-empty) and the
// knowledge snapshot as pretty JSON; history follows in chronological order,
// then the user message. The output is sanitized before being returned: the
// caller must never see raw JSON or code fences.
func (g *ResponseGenerator) Generate(
	ctx context.Context,
	memorySummary string,
	history []entities.Message,
	userText string,
	snapshot *entities.KnowledgeSnapshot,
) (string, error) {
	system := personaPrompt
	if memorySummary != "" {
		system += "\n\nMémoire de la conversation :\n" + memorySummary
	}
	if snapshot != nil {
		pretty, err := json.MarshalIndent(snapshot.Data, "", "  ")
		if err == nil {
			system += "\n\nDonnées de référence :\n" + string(pretty)
		}
	}

	messages := make([]repositories.ChatMessage, 0, len(history)+2)
	messages = append(messages, repositories.ChatMessage{
		Role:    repositories.SystemRole,
		Content: system,
	})
	for _, msg := range history {
		switch msg.Role {
		case entities.MessageRoleUser:
			messages = append(messages, repositories.ChatMessage{Role: repositories.UserRole, Content: msg.Content})
		case entities.MessageRoleAssistant:
			messages = append(messages, repositories.ChatMessage{Role: repositories.AssistantRole, Content: msg.Content})
		}
		// Router messages hold structured intents, not dialogue; skipped.
	}
	messages = append(messages, repositories.ChatMessage{
		Role:    repositories.UserRole,
		Content: userText,
	})

	raw, err := g.llm.Complete(ctx, repositories.CompletionRequest{
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   400,
	})
	if err != nil {
		return "", err
	}

	answer := SanitizeAnswer(raw)
	g.logger.Info("Answer generated",
		zap.Int("historyMessages", len(history)),
		zap.Int("answerLength", len(answer)))
	return answer, nil
}
