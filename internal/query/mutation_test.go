package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateInvalidatesDeclaredSetOnSuccess(t *testing.T) {
	s := newTestStore()
	feed := NewKey("feed", 1, 10)
	posts := NewKey("posts", 1, 10)
	profile := NewKey("profile", "u1")

	var feedCalls, postCalls, profCalls int
	mustFetch := func(key Key, calls *int) {
		_, err := Fetch(context.Background(), s, key, func(ctx context.Context) (int, error) {
			*calls++
			return *calls, nil
		}, Options{})
		require.NoError(t, err)
	}
	mustFetch(feed, &feedCalls)
	mustFetch(posts, &postCalls)
	mustFetch(profile, &profCalls)

	var gotResult string
	_, err := Mutate(context.Background(), s, func(ctx context.Context) (string, error) {
		return "created", nil
	}, Mutation[string]{
		OnSuccess:   func(v string) { gotResult = v },
		Invalidates: []Key{NewKey("feed"), NewKey("posts")},
	})
	require.NoError(t, err)
	assert.Equal(t, "created", gotResult)

	mustFetch(feed, &feedCalls)
	mustFetch(posts, &postCalls)
	mustFetch(profile, &profCalls)
	assert.Equal(t, 2, feedCalls)
	assert.Equal(t, 2, postCalls)
	assert.Equal(t, 1, profCalls, "keys outside the declared set keep their value")
}

func TestMutateFailureInvalidatesNothing(t *testing.T) {
	s := newTestStore()
	feed := NewKey("feed", 1, 10)

	var feedCalls int
	_, err := Fetch(context.Background(), s, feed, func(ctx context.Context) (int, error) {
		feedCalls++
		return feedCalls, nil
	}, Options{})
	require.NoError(t, err)

	boom := errors.New("rejected")
	var gotErr error
	onSuccessRan := false
	_, err = Mutate(context.Background(), s, func(ctx context.Context) (string, error) {
		return "", boom
	}, Mutation[string]{
		OnSuccess:   func(string) { onSuccessRan = true },
		OnError:     func(err error) { gotErr = err },
		Invalidates: []Key{NewKey("feed")},
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, boom, gotErr)
	assert.False(t, onSuccessRan)

	_, err = Fetch(context.Background(), s, feed, func(ctx context.Context) (int, error) {
		feedCalls++
		return feedCalls, nil
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, feedCalls, "failed mutation leaves the cache untouched")
}

func TestOptimisticFlipConfirm(t *testing.T) {
	type likeState struct {
		Liked bool
		Count int
	}
	o := NewOptimistic(likeState{Liked: false, Count: 3})

	o.Apply(likeState{Liked: true, Count: 4})
	assert.Equal(t, likeState{true, 4}, o.Current(), "tentative state renders immediately")

	o.Confirm(likeState{Liked: true, Count: 4})
	assert.Equal(t, likeState{true, 4}, o.Current())
}

func TestOptimisticFlipRevert(t *testing.T) {
	type likeState struct {
		Liked bool
		Count int
	}
	o := NewOptimistic(likeState{Liked: false, Count: 3})

	o.Apply(likeState{Liked: true, Count: 4})
	got := o.Revert()
	assert.Equal(t, likeState{false, 3}, got)
	assert.Equal(t, likeState{false, 3}, o.Current(), "failed mutation reverts to the pre-flip state")
}
