package jobs

import (
	"context"

	"github.com/agridocs/cloudapi/internal/cache"
	"github.com/agridocs/cloudapi/internal/store"
	"github.com/sirupsen/logrus"
)

// CountSyncTask keeps the cached document count warm so the health endpoint
// does not hit the database on every probe.
type CountSyncTask struct {
	store store.DocumentStore
	cache cache.DocumentCache
	cron  string
}

func NewCountSyncTask(schedule string, store store.DocumentStore, cache cache.DocumentCache) *CountSyncTask {
	return &CountSyncTask{
		store: store,
		cache: cache,
		cron:  schedule,
	}
}

func (c *CountSyncTask) Name() string {
	return "count_sync"
}

func (c *CountSyncTask) Schedule() string {
	return c.cron
}

func (c *CountSyncTask) Run() {
	ctx := context.Background()

	count, err := c.store.CountDocuments(ctx)
	if err != nil {
		logrus.Errorf("count sync: failed to count documents: %v", err)
		return
	}

	if err := c.cache.SetDocsCount(ctx, count); err != nil {
		logrus.Errorf("count sync: failed to update cache: %v", err)
	}
}
