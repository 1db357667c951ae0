package api

import (
	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
	"github.com/gabonpeche/iasted-server/usecase"
)

// ChatRequest is the body accepted by the turn handler. A flat messages
// array without a sessionId triggers the legacy path.
type ChatRequest struct {
	SessionID          string                     `json:"sessionId"`
	UserID             string                     `json:"userId,omitempty"`
	AudioBase64        string                     `json:"audioBase64,omitempty"`
	TranscriptOverride string                     `json:"transcriptOverride,omitempty"`
	LangHint           string                     `json:"langHint,omitempty"`
	VoiceID            string                     `json:"voiceId,omitempty"`
	GenerateAudio      *bool                      `json:"generateAudio,omitempty"`
	Messages           []repositories.ChatMessage `json:"messages,omitempty"`
}

// GenerateAudioOrDefault applies the documented default of true.
func (r *ChatRequest) GenerateAudioOrDefault() bool {
	if r.GenerateAudio == nil {
		return true
	}
	return *r.GenerateAudio
}

// TurnLatencies is the answered-turn latency breakdown. All five stages are
// present on the wire even when a stage was skipped or took under a
// millisecond.
type TurnLatencies struct {
	STT    int64 `json:"stt"`
	Router int64 `json:"router"`
	LLM    int64 `json:"llm"`
	TTS    int64 `json:"tts"`
	Total  int64 `json:"total"`
}

// ChatResponse is the answered-turn success body. Route carries only the
// category; audioContent is null when synthesis was disabled.
type ChatResponse struct {
	OK           bool            `json:"ok"`
	Route        entities.Intent `json:"route"`
	UserText     string          `json:"userText"`
	Answer       string          `json:"answer"`
	AudioContent *string         `json:"audioContent"`
	Latencies    TurnLatencies   `json:"latencies"`
}

// ShortCircuitChatResponse is the command/resume success body: the full
// intent object and only the latencies of the stages that ran — no answer or
// audio fields.
type ShortCircuitChatResponse struct {
	OK        bool              `json:"ok"`
	Route     entities.Intent   `json:"route"`
	UserText  string            `json:"userText"`
	Latencies usecase.Latencies `json:"latencies"`
}

// LegacyChatResponse is the backward-compatible shortcut-path body.
type LegacyChatResponse struct {
	Message      string  `json:"message"`
	AudioContent *string `json:"audioContent"`
	Success      bool    `json:"success"`
}

// ErrorResponse is the single error shape: no partial success is reported.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// TokenRequest is the body for dashboard token issuance.
type TokenRequest struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}

// TokenResponse carries the issued JWT.
type TokenResponse struct {
	Token string `json:"token"`
}

// AnsweredResponse converts an answered outcome to the wire shape.
func AnsweredResponse(outcome usecase.Answered) ChatResponse {
	return ChatResponse{
		OK:           true,
		Route:        entities.Intent{Category: outcome.Intent.Category},
		UserText:     outcome.UserText,
		Answer:       outcome.Answer,
		AudioContent: outcome.AudioBase64,
		Latencies: TurnLatencies{
			STT:    outcome.Latencies.STT,
			Router: outcome.Latencies.Router,
			LLM:    outcome.Latencies.LLM,
			TTS:    outcome.Latencies.TTS,
			Total:  outcome.Latencies.Total,
		},
	}
}

// ShortCircuitResponse converts a short-circuited outcome to the wire shape,
// carrying the full intent object.
func ShortCircuitResponse(outcome usecase.ShortCircuited) ShortCircuitChatResponse {
	return ShortCircuitChatResponse{
		OK:        true,
		Route:     outcome.Intent,
		UserText:  outcome.UserText,
		Latencies: outcome.Latencies,
	}
}
