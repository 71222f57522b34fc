// Package app wires the client together: config, session, API client and
// the query cache, plus the flows the UI performs. It owns the
// cross-invalidation graph — which cached reads a given write makes stale.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-client/internal/api"
	"github.com/d60-Lab/social-client/internal/config"
	"github.com/d60-Lab/social-client/internal/query"
	"github.com/d60-Lab/social-client/internal/session"
	"github.com/d60-Lab/social-client/internal/storage"
	"github.com/d60-Lab/social-client/internal/telemetry"
	"github.com/d60-Lab/social-client/pkg/logger"
)

const defaultPageSize = 10

// App is one running client instance.
type App struct {
	cfg config.Config

	Session *session.Store
	Client  *api.Client
	Cache   *query.Store

	kv         storage.Store
	rdb        *redis.Client
	stopGC     func(context.Context) error
	stopTraces func(context.Context) error
}

func New(cfg config.Config) (*App, error) {
	logger.Init(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
	}

	stopTraces, err := telemetry.Init(context.Background(), "social-client", cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	kv, err := storage.NewFromConfig(cfg.StorageType, cfg.StoragePath)
	if err != nil {
		_ = stopTraces(context.Background())
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	sess := session.NewStore(kv)
	if err := sess.Initialize(); err != nil {
		_ = kv.Close()
		_ = stopTraces(context.Background())
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	var rdb *redis.Client
	var backend query.Backend
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		backend = query.NewRedisBackend(rdb)
	}

	cache := query.NewStore(query.StoreOptions{
		TTL:        cfg.CacheTTL,
		Backend:    backend,
		BackendTTL: cfg.RedisTTL,
	})

	a := &App{
		cfg:     cfg,
		Session: sess,
		Client: api.NewClient(cfg.APIBaseURL, api.Options{
			Timeout:        cfg.HTTPTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			Burst:          cfg.RequestBurst,
		}),
		Cache:      cache,
		kv:         kv,
		rdb:        rdb,
		stopGC:     cache.StartGC(cfg.CacheGCEvery),
		stopTraces: stopTraces,
	}

	// cached per-viewer reads belong to whoever was logged in when they
	// were fetched; any session transition makes them stale
	sess.OnChange(func() {
		cache.Invalidate(context.Background(),
			keyFeedInf, keyEngagement, keySuggested, keyProfileRoot,
			keyFollowStatus, keyFollowers, keyFollowing)
	})

	return a, nil
}

// Close releases background workers and storage. The in-memory cache dies
// with the process.
func (a *App) Close(ctx context.Context) error {
	if a.stopGC != nil {
		_ = a.stopGC(ctx)
	}
	if a.stopTraces != nil {
		_ = a.stopTraces(ctx)
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	sentry.Flush(2 * time.Second)
	logger.Sync()
	return a.kv.Close()
}

// authed builds the read options for session-gated keys.
func (a *App) authed() query.Options {
	return query.Options{Enabled: a.Session.Authenticated}
}
