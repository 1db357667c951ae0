// Package knowledge fetches the reference dataset the dashboard exposes for
// the assistant's prompts.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// HTTPSource fetches the knowledge snapshot from the internal data endpoint.
type HTTPSource struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.KnowledgeSource = (*HTTPSource)(nil)

// NewHTTPSource creates a knowledge fetcher for the given endpoint. apiKey is
// sent as a bearer token when non-empty.
func NewHTTPSource(endpoint, apiKey string, logger *zap.Logger) (*HTTPSource, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("knowledge endpoint is required")
	}

	return &HTTPSource{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

// Fetch retrieves the current knowledge snapshot JSON.
func (s *HTTPSource) Fetch(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("knowledge endpoint returned %d: %s", resp.StatusCode, string(errorBody))
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge snapshot: %w", err)
	}

	s.logger.Debug("Knowledge snapshot fetched", zap.Int("keys", len(data)))
	return data, nil
}
