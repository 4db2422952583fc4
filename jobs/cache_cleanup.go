package jobs

import (
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/sirupsen/logrus"
)

// CacheCleanupJob drops expired analyses from the in-memory result cache
type CacheCleanupJob struct {
	Cache *services.ResultCache
}

func NewCacheCleanupJob(cache *services.ResultCache) *CacheCleanupJob {
	return &CacheCleanupJob{Cache: cache}
}

func (j *CacheCleanupJob) Run() {
	logrus.WithField("job", "cache_cleanup").Debug("Starting Cache Cleanup Job")
	removed := j.Cache.Sweep()
	logrus.WithFields(logrus.Fields{
		"job":       "cache_cleanup",
		"removed":   removed,
		"remaining": j.Cache.Size(),
	}).Info("Cache Cleanup Job completed")
}
