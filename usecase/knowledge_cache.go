package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// DefaultSnapshotTTL bounds how stale a served knowledge snapshot may be.
const DefaultSnapshotTTL = 5 * time.Minute

// SnapshotCache is a read-through, time-bounded cache of the knowledge
// snapshot. The clock and fetch source are injected so expiry is
// deterministic under test; the instance is passed through construction
// rather than held as a package-level singleton.
//
// There is no stampede protection: concurrent misses each issue a fetch and
// the last writer wins. The snapshot pointer is swapped atomically, so a
// duplicate fetch is possible but a torn {data, timestamp} pair is not.
type SnapshotCache struct {
	source  repositories.KnowledgeSource
	ttl     time.Duration
	now     func() time.Time
	current atomic.Pointer[entities.KnowledgeSnapshot]
}

// NewSnapshotCache creates a snapshot cache. Zero ttl means the default
// 5 minutes; nil now means time.Now.
func NewSnapshotCache(source repositories.KnowledgeSource, ttl time.Duration, now func() time.Time) *SnapshotCache {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{source: source, ttl: ttl, now: now}
}

// Get returns the cached snapshot, refetching when unset or at least TTL old.
// A snapshot older than the TTL is never served.
func (c *SnapshotCache) Get(ctx context.Context) (*entities.KnowledgeSnapshot, error) {
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.FetchedAt) < c.ttl {
		return snap, nil
	}

	data, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	snap := &entities.KnowledgeSnapshot{Data: data, FetchedAt: c.now()}
	c.current.Store(snap)
	return snap, nil
}
