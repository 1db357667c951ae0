package repositories

import "context"

// KnowledgeSource fetches the reference dataset injected into the
// answer-generation prompt.
type KnowledgeSource interface {
	Fetch(ctx context.Context) (map[string]any, error)
}
