package usecase

import (
	"context"
	"encoding/base64"
	"errors"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// LegacyAnswer is the result of the backward-compatible shortcut path.
type LegacyAnswer struct {
	Message     string
	AudioBase64 *string
}

// LegacyChat is the compatibility branch for callers that supply a flat
// messages array without a session id: one direct LLM call plus optional
// synthesis, bypassing the session, router, memory and analytics machinery
// entirely. It is deliberately not part of the primary state machine.
func (s *TurnService) LegacyChat(
	ctx context.Context,
	messages []repositories.ChatMessage,
	voiceID string,
	generateAudio bool,
) (*LegacyAnswer, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages array is empty")
	}

	raw, err := s.llm.Complete(ctx, repositories.CompletionRequest{
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, err
	}
	answer := SanitizeAnswer(raw)

	result := &LegacyAnswer{Message: answer}
	if generateAudio {
		audio, err := s.synthesize(ctx, answer, voiceID)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(audio)
		result.AudioBase64 = &encoded
	}

	s.logger.Info("Legacy chat completed",
		zap.Int("inputMessages", len(messages)),
		zap.Bool("audio", generateAudio))
	return result, nil
}
