// Package supabase implements the session, message and analytics repositories
// on the dashboard's Supabase project, through the PostgREST client.
package supabase

import (
	"fmt"
	"os"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// Table names owned by the dashboard migrations. The pipeline only reads and
// appends; it never creates or drops schema.
const (
	sessionsTable  = "iasted_sessions"
	messagesTable  = "iasted_messages"
	analyticsTable = "iasted_analytics_events"
)

// Config holds Supabase connection configuration.
type Config struct {
	URL    string
	APIKey string
}

// NewConfigFromEnv reads the Supabase connection settings from the
// environment.
func NewConfigFromEnv() Config {
	return Config{
		URL:    os.Getenv("SUPABASE_URL"),
		APIKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
	}
}

// Client wraps the Supabase client shared by the repositories.
type Client struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewClient creates a new Supabase client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	logger.Info("Supabase client initialized", zap.String("url", cfg.URL))
	return &Client{client: client, logger: logger}, nil
}
