package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// SessionRepository persists sessions and messages on Supabase.
type SessionRepository struct {
	db     *Client
	logger *zap.Logger
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a Supabase-backed session repository.
func NewSessionRepository(db *Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// MemorySummary returns the session's rolling summary. A session without a
// summary (or an unknown session id) yields "" — empty memory is valid
// initial state.
func (r *SessionRepository) MemorySummary(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}

	var rows []struct {
		MemorySummary *string `json:"memory_summary"`
	}
	_, err := r.db.client.From(sessionsTable).
		Select("memory_summary", "", false).
		Eq("id", sessionID).
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to fetch memory summary: %w", err)
	}

	if len(rows) == 0 || rows[0].MemorySummary == nil {
		return "", nil
	}
	return *rows[0].MemorySummary, nil
}

// UpdateMemorySummary writes the summary and its timestamp back to the
// session. Last-write-wins: a session is conversed with by one user serially,
// so no optimistic concurrency control is applied.
func (r *SessionRepository) UpdateMemorySummary(ctx context.Context, sessionID string, summary string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	_, _, err := r.db.client.From(sessionsTable).
		Update(map[string]any{
			"memory_summary":    summary,
			"memory_updated_at": time.Now().UTC().Format(time.RFC3339),
		}, "", "").
		Eq("id", sessionID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update memory summary: %w", err)
	}

	r.logger.Info("Memory summary updated",
		zap.String("sessionID", sessionID),
		zap.Int("summaryLength", len(summary)))
	return nil
}

// RecentMessages returns up to limit most recent messages in ascending
// chronological order. Rows are fetched descending by created_at and reversed:
// the generator treats the result as dialogue history and LLMs are
// order-sensitive, so the chronological contract must hold regardless of how
// the rows were fetched.
func (r *SessionRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]entities.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}

	var rows []entities.Message
	_, err := r.db.client.From(messagesTable).
		Select("*", "", false).
		Eq("session_id", sessionID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent messages: %w", err)
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// AppendMessage persists a new message row. Messages are immutable once
// written.
func (r *SessionRepository) AppendMessage(ctx context.Context, msg *entities.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, _, err := r.db.client.From(messagesTable).
		Insert(msg, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}
