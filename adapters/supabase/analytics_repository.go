package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// AnalyticsRepository appends turn outcome events on Supabase.
type AnalyticsRepository struct {
	db     *Client
	logger *zap.Logger
}

var _ repositories.AnalyticsRepository = (*AnalyticsRepository)(nil)

// NewAnalyticsRepository creates a Supabase-backed analytics repository.
func NewAnalyticsRepository(db *Client, logger *zap.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{db: db, logger: logger}
}

// Record appends one analytics event. Callers on the error path treat a
// failure here as best-effort: it is logged, never allowed to mask the
// original turn error.
func (r *AnalyticsRepository) Record(ctx context.Context, event *entities.AnalyticsEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if err := event.Validate(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, _, err := r.db.client.From(analyticsTable).
		Insert(event, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to record analytics event: %w", err)
	}

	r.logger.Debug("Analytics event recorded",
		zap.String("eventType", string(event.EventType)),
		zap.String("sessionID", event.SessionID))
	return nil
}
