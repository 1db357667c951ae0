package repositories

import (
	"context"
	"errors"

	"github.com/gabonpeche/iasted-server/domain/entities"
)

// ErrSessionNotFound is returned by session lookups for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines data access for sessions and their messages.
type SessionRepository interface {
	// MemorySummary returns the session's rolling summary, or "" when none
	// exists yet. Empty memory is valid initial state, not an error.
	MemorySummary(ctx context.Context, sessionID string) (string, error)
	// UpdateMemorySummary writes the summary and memory_updated_at back to the
	// session. Last-write-wins; no optimistic concurrency control.
	UpdateMemorySummary(ctx context.Context, sessionID string, summary string) error
	// RecentMessages returns up to limit most recent messages in ascending
	// chronological order.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]entities.Message, error)
	// AppendMessage persists a new immutable message.
	AppendMessage(ctx context.Context, msg *entities.Message) error
}

// AnalyticsRepository records turn outcome events. Append-only.
type AnalyticsRepository interface {
	Record(ctx context.Context, event *entities.AnalyticsEvent) error
}
