package app

import (
	"context"
	"sync"
	"time"

	"brokersum/domain/broker"
	"brokersum/internal"
	"brokersum/ports"
)

// DatasetCache serves the combined in-memory dataset built from every
// loaded activity row. Rebuilds are lazy: the cache refreshes on first
// use after the TTL expires or after an explicit invalidation.
type DatasetCache struct {
	activity ports.ActivityRepository
	ttl      time.Duration
	log      *internal.Logger

	mu       sync.RWMutex
	ds       *broker.Dataset
	loadedAt time.Time
}

// NewDatasetCache creates a cache over the activity repository.
func NewDatasetCache(activity ports.ActivityRepository, ttl time.Duration) *DatasetCache {
	return &DatasetCache{
		activity: activity,
		ttl:      ttl,
		log:      internal.DefaultLogger.WithComponent("DatasetCache"),
	}
}

// Get returns the cached dataset, rebuilding it from the database when
// stale. Concurrent callers during a rebuild share one load.
func (c *DatasetCache) Get(ctx context.Context) (*broker.Dataset, error) {
	c.mu.RLock()
	if c.ds != nil && time.Since(c.loadedAt) < c.ttl {
		ds := c.ds
		c.mu.RUnlock()
		return ds, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have rebuilt while we waited for the lock.
	if c.ds != nil && time.Since(c.loadedAt) < c.ttl {
		return c.ds, nil
	}

	started := time.Now()
	records, err := c.activity.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c.ds = broker.BuildDataset(records)
	c.loadedAt = time.Now()
	c.log.Info("Rebuilt dataset: %d records in %v", len(records), time.Since(started))
	return c.ds, nil
}

// Invalidate drops the cached dataset so the next Get rebuilds. Called
// after every ingest, delete and reload.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	c.ds = nil
	c.mu.Unlock()
}
