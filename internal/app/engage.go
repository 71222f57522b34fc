package app

import (
	"context"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
)

// Engagement returns the cached like/comment aggregates for a set of
// posts, fetched in one batched call. Gated until a session is active so
// the liked flag always belongs to a real viewer.
func (a *App) Engagement(ctx context.Context, postIDs []string) (map[string]model.Engagement, error) {
	if len(postIDs) == 0 {
		return map[string]model.Engagement{}, nil
	}
	return query.Fetch(ctx, a.Cache, keyEngagementSet(postIDs), func(ctx context.Context) (map[string]model.Engagement, error) {
		return a.Client.BatchEngagement(ctx, a.Session.Current(), postIDs)
	}, a.authed())
}

// LikeButton is the like control's local state for one post: the flip is
// applied tentatively the moment the user taps, then confirmed with the
// server's aggregate or reverted if the mutation fails. The cache layer
// does not roll back on its own — the revert lives here, in the view's
// error callback.
type LikeButton struct {
	app    *App
	postID string
	state  *query.Optimistic[model.Engagement]
}

// NewLikeButton builds the control from the last known aggregate.
func (a *App) NewLikeButton(postID string, current model.Engagement) *LikeButton {
	return &LikeButton{app: a, postID: postID, state: query.NewOptimistic(current)}
}

// State is what the view renders right now, tentative flips included.
func (b *LikeButton) State() model.Engagement { return b.state.Current() }

// Toggle flips the like optimistically and submits the mutation. On
// success every engagement entry and the post's comment-count carrier is
// invalidated; on failure the tentative flip reverts.
func (b *LikeButton) Toggle(ctx context.Context) error {
	cur := b.state.Current()
	flipped := cur
	flipped.Liked = !cur.Liked
	if flipped.Liked {
		flipped.LikeCount = cur.LikeCount + 1
	} else {
		flipped.LikeCount = cur.LikeCount - 1
	}
	b.state.Apply(flipped)

	_, err := query.Mutate(ctx, b.app.Cache, func(ctx context.Context) (model.Engagement, error) {
		return b.app.Client.ToggleLike(ctx, b.app.Session.Current(), b.postID)
	}, query.Mutation[model.Engagement]{
		OnSuccess:   func(e model.Engagement) { b.state.Confirm(e) },
		OnError:     func(error) { b.state.Revert() },
		Invalidates: []query.Key{keyEngagement, keyComments(b.postID)},
	})
	return err
}

// FollowButton is the follow control for one profile, with the same
// tentative-apply / confirm-or-revert discipline as LikeButton.
type FollowButton struct {
	app    *App
	userID string
	state  *query.Optimistic[model.FollowStats]
}

func (a *App) NewFollowButton(userID string, current model.FollowStats) *FollowButton {
	return &FollowButton{app: a, userID: userID, state: query.NewOptimistic(current)}
}

func (b *FollowButton) State() model.FollowStats { return b.state.Current() }

// followMutationKeys is the invalidation set for a follow-state change:
// both profiles, the follower/following lists, the viewer's feed and the
// suggestion list.
func (b *FollowButton) followMutationKeys() []query.Key {
	keys := []query.Key{
		keyProfile(b.userID), keyFollowStat(b.userID),
		keyFollowers, keyFollowing, keyFeedInf, keySuggested,
	}
	if sess := b.app.Session.Current(); sess != nil {
		keys = append(keys, keyProfile(sess.UserID))
	}
	return keys
}

// Toggle follows or unfollows optimistically.
func (b *FollowButton) Toggle(ctx context.Context) error {
	cur := b.state.Current()
	flipped := cur
	flipped.IsFollowing = !cur.IsFollowing
	if flipped.IsFollowing {
		flipped.Followers = cur.Followers + 1
	} else {
		flipped.Followers = cur.Followers - 1
	}
	b.state.Apply(flipped)

	_, err := query.Mutate(ctx, b.app.Cache, func(ctx context.Context) (struct{}, error) {
		sess := b.app.Session.Current()
		if flipped.IsFollowing {
			return struct{}{}, b.app.Client.Follow(ctx, sess, b.userID)
		}
		return struct{}{}, b.app.Client.Unfollow(ctx, sess, b.userID)
	}, query.Mutation[struct{}]{
		OnSuccess:   func(struct{}) { b.state.Confirm(flipped) },
		OnError:     func(error) { b.state.Revert() },
		Invalidates: b.followMutationKeys(),
	})
	return err
}
