package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

const (
	// summaryWindow is how many trailing messages get compressed.
	summaryWindow = 8
	// summaryMaxWords caps the generated summary length.
	summaryMaxWords = 180
	// Summarization trigger policy: only once recent history has grown and
	// the existing summary is empty or trivially short. This trades
	// summarization cost against staleness; it is a tunable heuristic, not a
	// load-bearing invariant.
	summarizeMinHistory    = 5
	summarizeMaxSummaryLen = 50
)

// ShouldSummarize is the named trigger policy for memory compression.
func ShouldSummarize(historyLen int, currentSummary string) bool {
	return historyLen >= summarizeMinHistory && len(currentSummary) < summarizeMaxSummaryLen
}

// MemorySummarizer compresses a session's trailing messages into a rolling
// free-text summary stored on the session row.
type MemorySummarizer struct {
	llm      repositories.ChatCompleter
	sessions repositories.SessionRepository
	logger   *zap.Logger
}

// NewMemorySummarizer creates a memory summarizer. llm may be nil when no key
// is configured; Summarize is then a no-op.
func NewMemorySummarizer(llm repositories.ChatCompleter, sessions repositories.SessionRepository, logger *zap.Logger) *MemorySummarizer {
	return &MemorySummarizer{llm: llm, sessions: sessions, logger: logger}
}

// Summarize fetches the session's last messages, compresses them, and writes
// the result back to the session. Returns "" without error when there is
// nothing to summarize or no model is configured. Writes are last-write-wins.
func (m *MemorySummarizer) Summarize(ctx context.Context, sessionID string) (string, error) {
	if m.llm == nil {
		return "", nil
	}

	messages, err := m.sessions.RecentMessages(ctx, sessionID, summaryWindow)
	if err != nil {
		return "", fmt.Errorf("failed to load messages for summarization: %w", err)
	}
	if len(messages) == 0 {
		return "", nil
	}

	var transcript strings.Builder
	for _, msg := range messages {
		if msg.Role == entities.MessageRoleRouter {
			continue
		}
		transcript.WriteString(string(msg.Role))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	prompt := fmt.Sprintf(
		"Résume la conversation suivante en au plus %d mots, en conservant les faits, chiffres et demandes en cours. Réponds uniquement avec le résumé.\n\n%s",
		summaryMaxWords, transcript.String())

	raw, err := m.llm.Complete(ctx, repositories.CompletionRequest{
		Messages: []repositories.ChatMessage{
			{Role: repositories.UserRole, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   400,
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", nil
	}

	if err := m.sessions.UpdateMemorySummary(ctx, sessionID, summary); err != nil {
		return "", err
	}

	m.logger.Info("Memory summarized",
		zap.String("sessionID", sessionID),
		zap.Int("messages", len(messages)),
		zap.Int("summaryLength", len(summary)))
	return summary, nil
}
