package query

import (
	"context"

	"github.com/d60-Lab/social-client/internal/model"
)

// PageFetcher loads one page of a paginated endpoint.
type PageFetcher[T any] func(ctx context.Context, page int) (model.Page[T], error)

// FetchInfinite returns the ordered page sequence for key, loading page 1
// if nothing is cached yet. Concurrent callers during the initial load
// share one fetch. An invalidated key drops its page sequence and reloads
// from page 1 — pages are only ever appended, never merged into stale
// state.
func FetchInfinite[T any](ctx context.Context, s *Store, key Key, fetch PageFetcher[T], opts Options) ([]model.Page[T], error) {
	if opts.Enabled != nil && !opts.Enabled() {
		return nil, ErrDisabled
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	for {
		s.mu.Lock()
		e := s.entryLocked(key)

		if e.loading {
			done := e.done
			s.mu.Unlock()
			select {
			case <-done:
				continue // re-read the entry the flight just published
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if pages, ok := e.data.([]model.Page[T]); ok && e.hasData && !e.stale && s.now().Sub(e.fetchedAt) < ttl {
			s.mu.Unlock()
			s.hitCount.Add(1)
			return pages, nil
		}

		gen := e.gen
		e.loading = true
		e.done = make(chan struct{})
		e.status = StatusLoading
		s.notifyLocked(key, e)
		s.mu.Unlock()

		s.fetchCount.Add(1)
		page, err := fetch(ctx, 1)
		return finishInfinite(s, key, gen, []model.Page[T]{page}, err)
	}
}

// FetchNextPage appends page N+1 to the sequence for key. It is a no-op —
// returning the current pages with fetched=false — while a fetch for the
// key is in flight, when nothing is loaded yet, when the key was
// invalidated (appending to a stale sequence would republish it as fresh;
// the caller goes back through FetchInfinite's drop-and-reload), or when
// the last page's pagination says there is nothing further.
func FetchNextPage[T any](ctx context.Context, s *Store, key Key, fetch PageFetcher[T]) (pages []model.Page[T], fetched bool, err error) {
	s.mu.Lock()
	e := s.entryLocked(key)
	pages, ok := e.data.([]model.Page[T])
	if e.loading || e.stale || !ok || len(pages) == 0 || !pages[len(pages)-1].Pagination.HasNext() {
		s.mu.Unlock()
		return pages, false, nil
	}

	next := pages[len(pages)-1].Pagination.Page + 1
	gen := e.gen
	e.loading = true
	e.done = make(chan struct{})
	e.status = StatusLoading
	s.notifyLocked(key, e)
	s.mu.Unlock()

	s.fetchCount.Add(1)
	page, err := fetch(ctx, next)
	out, err := finishInfinite(s, key, gen, append(pages, page), err)
	return out, err == nil, err
}

// finishInfinite publishes a flight's outcome unless the key was
// invalidated while it ran.
func finishInfinite[T any](s *Store, key Key, gen uint64, pages []model.Page[T], err error) ([]model.Page[T], error) {
	s.mu.Lock()
	e := s.entryLocked(key)
	if e.loading {
		close(e.done)
		e.loading = false
		e.done = nil
	}
	if e.gen == gen {
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.data = pages
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
		return nil, err
	}
	return pages, nil
}

// Items flattens a page sequence into one ordered slice.
func Items[T any](pages []model.Page[T]) []T {
	var n int
	for _, p := range pages {
		n += len(p.Items)
	}
	out := make([]T, 0, n)
	for _, p := range pages {
		out = append(out, p.Items...)
	}
	return out
}
