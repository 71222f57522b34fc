// Package query is the client's data-synchronization layer: a keyed
// in-memory cache over the API client functions. It deduplicates
// concurrent reads per key, tracks staleness, gates fetching behind
// caller-supplied predicates, and applies mutation-driven invalidation so
// views never render data known to be stale after a write.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrDisabled is returned when a read is attempted against a key whose
// enabled predicate is false. Callers treat it as "no data yet", not as a
// failure.
var ErrDisabled = errors.New("query: disabled")

// Status is the per-key fetch state machine: idle → loading → success or
// error; refetches return to loading.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot is the observable state of one cache entry.
type Snapshot struct {
	Key       Key
	Status    Status
	Data      any
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type entry struct {
	status    Status
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
	stale     bool
	// gen increments on every invalidation; a fetch started under an older
	// generation never writes its result back.
	gen uint64

	// infinite-query flight state
	loading bool
	done    chan struct{}

	watchers      map[int]chan Snapshot
	nextWatcherID int
}

// Store is the process-wide cache. All components share one instance.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flight  singleflight.Group

	ttl        time.Duration
	backend    Backend
	backendTTL time.Duration
	now        func() time.Time

	fetchCount atomic.Int64
	hitCount   atomic.Int64
	errCount   atomic.Int64
}

// StoreOptions tune the store; zero values get defaults.
type StoreOptions struct {
	TTL        time.Duration
	Backend    Backend
	BackendTTL time.Duration
}

func NewStore(opts StoreOptions) *Store {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.BackendTTL <= 0 {
		opts.BackendTTL = 5 * time.Minute
	}
	return &Store{
		entries:    make(map[Key]*entry),
		ttl:        opts.TTL,
		backend:    opts.Backend,
		backendTTL: opts.BackendTTL,
		now:        time.Now,
	}
}

// Options tune one read.
type Options struct {
	// TTL overrides the store staleness window for this key.
	TTL time.Duration
	// Enabled gates fetching. While it returns false no fetch is issued
	// and reads fail with ErrDisabled.
	Enabled func() bool
}

// Fetcher loads the payload for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached payload for key when fresh, otherwise runs
// fetcher — at most once per key across concurrent callers. On failure the
// last good payload stays cached for display fallback and the error is
// recorded on the entry.
func Fetch[T any](ctx context.Context, s *Store, key Key, fetcher Fetcher[T], opts Options) (T, error) {
	var zero T
	if opts.Enabled != nil && !opts.Enabled() {
		return zero, ErrDisabled
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	e := s.entryLocked(key)
	if e.hasData && !e.stale && s.now().Sub(e.fetchedAt) < ttl {
		data, ok := e.data.(T)
		s.mu.Unlock()
		if ok {
			s.hitCount.Add(1)
			return data, nil
		}
		// type mismatch across callers; fall through to refetch
		s.mu.Lock()
	}
	gen := e.gen
	e.status = StatusLoading
	s.notifyLocked(key, e)
	s.mu.Unlock()

	v, err, _ := s.flight.Do(flightID(key, gen), func() (any, error) {
		if cached, ok := s.backendLookup(ctx, key); ok {
			var out T
			if json.Unmarshal(cached, &out) == nil {
				return out, nil
			}
		}
		s.fetchCount.Add(1)
		out, err := fetcher(ctx)
		if err != nil {
			return nil, err
		}
		s.backendStore(ctx, key, out)
		return out, nil
	})

	s.mu.Lock()
	e = s.entryLocked(key)
	if e.gen == gen {
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.data = v
			e.hasData = true
			e.stale = false
			e.err = nil
			e.fetchedAt = s.now()
		}
		s.notifyLocked(key, e)
	}
	s.mu.Unlock()

	if err != nil {
		s.errCount.Add(1)
		return zero, err
	}
	return v.(T), nil
}

// Invalidate marks every entry covered by the given keys as stale: the
// next read refetches, and any fetch already in flight for those keys can
// no longer publish its result. Matching is exact or by prefix segment.
func (s *Store) Invalidate(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}
	s.mu.Lock()
	for k, e := range s.entries {
		for _, target := range keys {
			if k.matches(target) {
				e.stale = true
				e.gen++
				s.notifyLocked(k, e)
				break
			}
		}
	}
	s.mu.Unlock()
	s.backendInvalidate(ctx, keys)
}

// Get returns the observable state of a key without fetching.
func (s *Store) Get(key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Snapshot{Key: key, Status: StatusIdle}
	}
	return snapshotLocked(key, e)
}

// Watch returns a channel of entry snapshots for key plus a cancel
// function. Sends never block: a consumer that stopped draining (an
// unmounted view) just misses updates, it is never written to after
// cancel.
func (s *Store) Watch(key Key, buffer int) (<-chan Snapshot, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	e := s.entryLocked(key)
	if e.watchers == nil {
		e.watchers = make(map[int]chan Snapshot)
	}
	id := e.nextWatcherID
	e.nextWatcherID++
	e.watchers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[key]; ok {
			if w, ok := e.watchers[id]; ok {
				delete(e.watchers, id)
				close(w)
			}
		}
	}
	return ch, cancel
}

// Stats reports fetch/hit/error counters since construction.
func (s *Store) Stats() (fetches, hits, errors int64) {
	return s.fetchCount.Load(), s.hitCount.Load(), s.errCount.Load()
}

// entryLocked returns the entry for key, creating it idle if absent.
// Caller holds s.mu.
func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{status: StatusIdle}
		s.entries[key] = e
	}
	return e
}

func (s *Store) notifyLocked(key Key, e *entry) {
	if len(e.watchers) == 0 {
		return
	}
	snap := snapshotLocked(key, e)
	for _, ch := range e.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func snapshotLocked(key Key, e *entry) Snapshot {
	return Snapshot{
		Key:       key,
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     e.stale,
	}
}

func flightID(key Key, gen uint64) string {
	// the generation is part of the flight id so post-invalidation readers
	// never join a pre-invalidation flight
	return string(key) + "#" + strconv.FormatUint(gen, 10)
}
