package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sellstream/backend/internal/application/analytics"
	"github.com/sellstream/backend/internal/infrastructure/config"
)

// NewReportCache creates the report cache selected by configuration.
// The "redis" backend falls back to the in-memory cache when Redis is
// unreachable, so a cache outage never blocks report serving.
func NewReportCache(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) (analytics.ReportCache, error) {
	switch cacheCfg.Backend {
	case "redis":
		c, err := NewRedisReportCache(redisCfg, logger)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory report cache. "+
				"Cached reports will not be shared across instances.",
				zap.Error(err))
			return NewInMemoryReportCache(), nil
		}
		logger.Info("using Redis report cache", zap.String("addr", redisCfg.Addr()))
		return c, nil
	case "memory":
		return NewInMemoryReportCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cacheCfg.Backend)
	}
}
