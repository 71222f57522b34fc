package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(StoreOptions{TTL: time.Minute})
}

func TestConcurrentReadsShareOneFetch(t *testing.T) {
	s := newTestStore()
	key := NewKey("posts", 1, 10)

	var calls atomic.Int64
	release := make(chan struct{})
	fetcher := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "payload", nil
	}

	const readers = 25
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), s, key, fetcher, Options{})
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// let every reader reach the flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, "payload", r)
	}
}

func TestFreshHitSkipsFetch(t *testing.T) {
	s := newTestStore()
	key := NewKey("profile", "u1")

	var calls int
	fetcher := func(ctx context.Context) (int, error) { calls++; return 42, nil }

	for i := 0; i < 5; i++ {
		v, err := Fetch(context.Background(), s, key, fetcher, Options{})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	fetches, hits, _ := s.Stats()
	assert.EqualValues(t, 1, fetches)
	assert.EqualValues(t, 4, hits)
}

func TestStalenessWindowTriggersRefetch(t *testing.T) {
	s := NewStore(StoreOptions{TTL: time.Minute})
	now := time.Now()
	s.now = func() time.Time { return now }
	key := NewKey("posts", 1, 10)

	var calls int
	fetcher := func(ctx context.Context) (int, error) { calls++; return calls, nil }

	v, err := Fetch(context.Background(), s, key, fetcher, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, err = Fetch(context.Background(), s, key, fetcher, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestErrorKeepsLastGoodPayload(t *testing.T) {
	s := newTestStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	key := NewKey("feed", 1, 10)

	_, err := Fetch(context.Background(), s, key, func(ctx context.Context) (string, error) {
		return "good", nil
	}, Options{})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute) // past staleness
	boom := errors.New("server exploded")
	_, err = Fetch(context.Background(), s, key, func(ctx context.Context) (string, error) {
		return "", boom
	}, Options{})
	require.ErrorIs(t, err, boom)

	snap := s.Get(key)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "good", snap.Data, "last good payload stays for display fallback")
	assert.Equal(t, boom, snap.Err)
}

func TestDisabledKeyNeverFetches(t *testing.T) {
	s := newTestStore()
	key := NewKey("feed", 1, 10)

	enabled := false
	var calls int
	fetcher := func(ctx context.Context) (string, error) { calls++; return "x", nil }
	opts := Options{Enabled: func() bool { return enabled }}

	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), s, key, fetcher, opts)
		assert.ErrorIs(t, err, ErrDisabled)
	}
	assert.Zero(t, calls)
	assert.Equal(t, StatusIdle, s.Get(key).Status)

	// flipping the gate triggers exactly one fetch
	enabled = true
	v, err := Fetch(context.Background(), s, key, fetcher, opts)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	_, err = Fetch(context.Background(), s, key, fetcher, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestInvalidateForcesRefetchAndSparesOtherKeys(t *testing.T) {
	s := newTestStore()
	liked := NewKey("engagement", "p1")
	other := NewKey("profile", "u1")

	var engCalls, profCalls int
	_, err := Fetch(context.Background(), s, liked, func(ctx context.Context) (int, error) { engCalls++; return engCalls, nil }, Options{})
	require.NoError(t, err)
	_, err = Fetch(context.Background(), s, other, func(ctx context.Context) (int, error) { profCalls++; return profCalls, nil }, Options{})
	require.NoError(t, err)

	s.Invalidate(context.Background(), NewKey("engagement"))

	v, err := Fetch(context.Background(), s, liked, func(ctx context.Context) (int, error) { engCalls++; return engCalls, nil }, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, v, "prefix-invalidated key refetches")

	_, err = Fetch(context.Background(), s, other, func(ctx context.Context) (int, error) { profCalls++; return profCalls, nil }, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, profCalls, "unrelated key keeps its cached value")
}

func TestReadAfterInvalidationNeverObservesPreInvalidationFetch(t *testing.T) {
	s := newTestStore()
	key := NewKey("posts", 1, 10)

	begun := make(chan struct{})
	release := make(chan struct{})
	staleDone := make(chan struct{})

	go func() {
		defer close(staleDone)
		_, _ = Fetch(context.Background(), s, key, func(ctx context.Context) (string, error) {
			close(begun)
			<-release
			return "pre-invalidation", nil
		}, Options{})
	}()

	<-begun
	s.Invalidate(context.Background(), key)

	// the old flight completes, but its result must not be published
	close(release)
	<-staleDone
	snap := s.Get(key)
	assert.NotEqual(t, "pre-invalidation", snap.Data)

	v, err := Fetch(context.Background(), s, key, func(ctx context.Context) (string, error) {
		return "post-invalidation", nil
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "post-invalidation", v)
}

func TestWatchSeesTransitionsAndStopsAfterCancel(t *testing.T) {
	s := newTestStore()
	key := NewKey("comments", "p1")

	ch, cancel := s.Watch(key, 16)

	_, err := Fetch(context.Background(), s, key, func(ctx context.Context) (string, error) {
		return "c", nil
	}, Options{})
	require.NoError(t, err)

	var statuses []Status
	for len(ch) > 0 {
		statuses = append(statuses, (<-ch).Status)
	}
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusLoading, statuses[0])
	assert.Equal(t, StatusSuccess, statuses[len(statuses)-1])

	cancel()
	_, open := <-ch
	assert.False(t, open, "channel closes on cancel; late results are discarded safely")

	// further transitions must not panic with the watcher gone
	s.Invalidate(context.Background(), key)
}

func TestGCEvictsOldUnwatchedEntries(t *testing.T) {
	s := NewStore(StoreOptions{TTL: time.Second})
	now := time.Now()
	s.now = func() time.Time { return now }

	watched := NewKey("feed", 1, 10)
	idle := NewKey("search", "query")
	_, err := Fetch(context.Background(), s, watched, func(ctx context.Context) (int, error) { return 1, nil }, Options{})
	require.NoError(t, err)
	_, err = Fetch(context.Background(), s, idle, func(ctx context.Context) (int, error) { return 2, nil }, Options{})
	require.NoError(t, err)
	_, cancel := s.Watch(watched, 1)
	defer cancel()

	now = now.Add(time.Hour)
	s.sweep()

	s.mu.Lock()
	_, idleAlive := s.entries[idle]
	_, watchedAlive := s.entries[watched]
	s.mu.Unlock()
	assert.False(t, idleAlive)
	assert.True(t, watchedAlive, "watched entries survive the sweep")
}

func TestStartGCStopIsIdempotent(t *testing.T) {
	s := newTestStore()
	stop := s.StartGC(time.Millisecond)

	require.NoError(t, stop(context.Background()))
	assert.NotPanics(t, func() { _ = stop(context.Background()) })
}

func TestNewKeyRendering(t *testing.T) {
	assert.Equal(t, Key("posts"), NewKey("posts"))
	assert.Equal(t, Key("posts:2:20"), NewKey("posts", 2, 20))
	assert.True(t, NewKey("engagement", "p1", "p2").matches(NewKey("engagement")))
	assert.False(t, NewKey("engagements").matches(NewKey("engagement")))
}
