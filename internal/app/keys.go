package app

import (
	"sort"
	"strings"

	"github.com/d60-Lab/social-client/internal/query"
)

// Cache key catalog. Mutations invalidate by these roots, so every
// parameterized key hangs under its operation name.
var (
	keyPostsRoot    = query.NewKey("posts")
	keyPostsInf     = query.NewKey("posts-infinite")
	keyFeedInf      = query.NewKey("feed-infinite")
	keyEngagement   = query.NewKey("engagement")
	keySuggested    = query.NewKey("suggested")
	keyFollowers    = query.NewKey("followers")
	keyFollowing    = query.NewKey("following")
	keyFollowStatus = query.NewKey("follow-status")
	keyProfileRoot  = query.NewKey("profile")
)

func keyPosts(page, limit int) query.Key    { return query.NewKey("posts", page, limit) }
func keyUserPosts(userID string) query.Key  { return query.NewKey("user-posts", userID) }
func keyPost(postID string) query.Key       { return query.NewKey("post", postID) }
func keyComments(postID string) query.Key   { return query.NewKey("comments", postID) }
func keyProfile(userID string) query.Key    { return query.NewKey("profile", userID) }
func keyFollowStat(userID string) query.Key { return query.NewKey("follow-status", userID) }
func keyFollowerPage(userID string, page, limit int) query.Key {
	return query.NewKey("followers", userID, page, limit)
}
func keyFollowingPage(userID string, page, limit int) query.Key {
	return query.NewKey("following", userID, page, limit)
}
func keySearch(q string, page, limit int) query.Key {
	return query.NewKey("search", q, page, limit)
}

// keyEngagementSet keys a batch by its sorted id set so equal sets share
// one entry regardless of order.
func keyEngagementSet(postIDs []string) query.Key {
	ids := append([]string(nil), postIDs...)
	sort.Strings(ids)
	return query.NewKey("engagement", strings.Join(ids, ","))
}
