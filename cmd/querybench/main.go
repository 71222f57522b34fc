package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/social-client/internal/api"
	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
	"github.com/d60-Lab/social-client/internal/testapi"
)

// Compares post-read latency against an in-process API: raw client calls,
// the in-memory query store, and the store with a Redis second level.

const (
	userCount = 50
	postCount = 400
	reqCount  = 5000
	cacheTTL  = time.Minute
)

type request struct {
	postID string
}

func main() {
	ctx := context.Background()

	srv := testapi.New()
	defer srv.Close()

	fmt.Println("Seeding test data...")
	postIDs := make([]string, 0, postCount)
	for i := 0; i < userCount; i++ {
		uid := srv.SeedUser(fmt.Sprintf("u%d@example.com", i), "pw", "User", fmt.Sprintf("%d", i))
		for j := 0; j < postCount/userCount; j++ {
			postIDs = append(postIDs, srv.SeedPost(uid, fmt.Sprintf("post %d/%d", i, j), "content"))
		}
	}

	// throttle off for the benchmark, every request is local anyway
	client := api.NewClient(srv.URL, api.Options{RequestsPerSec: 1_000_000, Burst: 10_000})
	reqs := makeRequests(postIDs)

	direct := run(reqs, func(r request) error {
		_, err := client.GetPost(ctx, nil, r.postID)
		return err
	})

	memStore := query.NewStore(query.StoreOptions{TTL: cacheTTL})
	memory := run(reqs, func(r request) error {
		_, err := fetchPost(ctx, memStore, client, r.postID)
		return err
	})
	memFetches, memHits, _ := memStore.Stats()

	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	redisStore := query.NewStore(query.StoreOptions{
		TTL:        cacheTTL,
		Backend:    query.NewRedisBackend(rdb),
		BackendTTL: 5 * time.Minute,
	})
	layered := run(reqs, func(r request) error {
		_, err := fetchPost(ctx, redisStore, client, r.postID)
		return err
	})
	redisFetches, redisHits, _ := redisStore.Stats()

	fmt.Printf("\nPost read latency (%d requests, %d posts, zipf-ish mix)\n", reqCount, len(postIDs))
	fmt.Printf("%-16s avg=%v p95=%v p99=%v api_hits=%d\n",
		"No cache", avg(direct), pct(direct, 0.95), pct(direct, 0.99), reqCount)
	fmt.Printf("%-16s avg=%v p95=%v p99=%v api_hits=%d store_hits=%d fetches=%d\n",
		"Memory cache", avg(memory), pct(memory, 0.95), pct(memory, 0.99),
		srvHitsFor(memFetches), memHits, memFetches)
	fmt.Printf("%-16s avg=%v p95=%v p99=%v api_hits=%d store_hits=%d fetches=%d\n",
		"Memory + Redis", avg(layered), pct(layered, 0.95), pct(layered, 0.99),
		srvHitsFor(redisFetches), redisHits, redisFetches)
}

func fetchPost(ctx context.Context, s *query.Store, client *api.Client, postID string) (model.Post, error) {
	return query.Fetch(ctx, s, query.NewKey("post", postID), func(ctx context.Context) (model.Post, error) {
		return client.GetPost(ctx, nil, postID)
	}, query.Options{})
}

// srvHitsFor: each store fetch is at most one upstream request, so the
// fetch counter doubles as the API hit count for a cached scenario.
func srvHitsFor(fetches int64) int64 { return fetches }

func run(reqs []request, call func(request) error) []time.Duration {
	fmt.Print("  Running scenario...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if err := call(r); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")
	return out
}

func makeRequests(postIDs []string) []request {
	out := make([]request, reqCount)
	rnd := rand.New(rand.NewSource(42))
	for i := range out {
		// a small head of hot posts takes most of the traffic
		idx := rnd.Intn(len(postIDs))
		if rnd.Float64() < 0.8 {
			idx = rnd.Intn(1 + len(postIDs)/20)
		}
		out[i] = request{postID: postIDs[idx]}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
