package entities

import (
	"errors"
	"time"
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleRouter    MessageRole = "router"
)

// Session is a persisted conversation. Sessions are created by the dashboard
// before the first turn; this pipeline only reads them and updates the rolling
// memory summary, it never deletes them.
type Session struct {
	ID              string     `json:"id"`
	UserID          *string    `json:"user_id,omitempty"`
	MemorySummary   string     `json:"memory_summary"`
	MemoryUpdatedAt *time.Time `json:"memory_updated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Message is a single entry in a session's history. Messages are immutable
// once written; ordering is by creation time.
type Message struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Role        MessageRole    `json:"role"`
	Content     string         `json:"content,omitempty"`
	ContentJSON map[string]any `json:"content_json,omitempty"`
	Lang        string         `json:"lang,omitempty"`
	Tokens      int            `json:"tokens,omitempty"`
	LatencyMs   int            `json:"latency_ms,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AnalyticsEventType enumerates the recorded turn outcomes.
type AnalyticsEventType string

const (
	EventVoiceCommand AnalyticsEventType = "voice_command"
	EventAskResume    AnalyticsEventType = "ask_resume"
	EventTurnComplete AnalyticsEventType = "turn_complete"
	EventError        AnalyticsEventType = "error"
)

// AnalyticsEvent is an append-only record of one turn's outcome, including
// the latency breakdown for completed turns.
type AnalyticsEvent struct {
	ID        string             `json:"id"`
	SessionID string             `json:"session_id,omitempty"`
	UserID    string             `json:"user_id,omitempty"`
	EventType AnalyticsEventType `json:"event_type"`
	Data      map[string]any     `json:"data,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// KnowledgeSnapshot is the cached reference dataset injected into the
// answer-generation prompt.
type KnowledgeSnapshot struct {
	Data      map[string]any
	FetchedAt time.Time
}

func (m *Message) Validate() error {
	if m.SessionID == "" {
		return errors.New("session_id is required")
	}
	switch m.Role {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleRouter:
	default:
		return errors.New("invalid message role")
	}
	if m.Content == "" && m.ContentJSON == nil {
		return errors.New("message needs content or content_json")
	}
	return nil
}

func (e *AnalyticsEvent) Validate() error {
	switch e.EventType {
	case EventVoiceCommand, EventAskResume, EventTurnComplete, EventError:
		return nil
	default:
		return errors.New("invalid analytics event type")
	}
}
