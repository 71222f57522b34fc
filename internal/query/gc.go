package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-client/pkg/logger"
)

// evictAfter multiplies the staleness window into the eviction horizon:
// entries stay around for fallback display well past staleness, then go.
const evictAfter = 10

// StartGC launches a background sweep that drops entries nobody watches
// once they are far past their staleness window. Returns a stop function
// that is safe to call more than once.
func (s *Store) StartGC(interval time.Duration) func(context.Context) error {
	if interval <= 0 {
		interval = time.Minute
	}
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		return nil
	}
}

func (s *Store) sweep() {
	horizon := s.now().Add(-evictAfter * s.ttl)
	var evicted int
	s.mu.Lock()
	for k, e := range s.entries {
		if e.loading || len(e.watchers) > 0 {
			continue
		}
		if e.hasData && e.fetchedAt.Before(horizon) {
			delete(s.entries, k)
			evicted++
		}
	}
	s.mu.Unlock()
	if evicted > 0 {
		logger.Debug("cache gc", zap.Int("evicted", evicted))
	}
}
