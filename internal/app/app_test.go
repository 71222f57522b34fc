package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-client/internal/config"
	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
	"github.com/d60-Lab/social-client/internal/testapi"
	"github.com/d60-Lab/social-client/internal/validation"
)

func newTestApp(t *testing.T, srv *testapi.Server) *App {
	t.Helper()
	a, err := New(testConfig(srv))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func testConfig(srv *testapi.Server) config.Config {
	return config.Config{
		APIBaseURL:  srv.URL,
		HTTPTimeout: 5 * time.Second,
		CacheTTL:    time.Minute,
		StorageType: "memory",
		LogLevel:    "error",
	}
}

func TestNewFailsCleanlyOnBadStorageType(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()

	cfg := testConfig(srv)
	cfg.StorageType = "etched-stone"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening storage")
}

func TestLoginEnablesFeedAndLogoutDisables(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()

	ada := srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	bob := srv.SeedUser("bob@example.com", "pw", "Bob", "Babbage")
	srv.SeedFollow(ada, bob)
	srv.SeedPost(bob, "engines", "difference and analytical")

	a := newTestApp(t, srv)
	ctx := context.Background()

	_, err := a.HomeFeed(ctx)
	require.ErrorIs(t, err, query.ErrDisabled)
	assert.Equal(t, 0, srv.Hits("GET /api/posts/feed"))

	sess, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, ada, sess.UserID)
	require.True(t, a.Session.Authenticated())

	posts, err := a.HomeFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "engines", posts[0].Title)

	// fresh cache: a second render serves from memory
	_, err = a.HomeFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("GET /api/posts/feed"))

	a.Logout()
	_, err = a.HomeFeed(ctx)
	require.ErrorIs(t, err, query.ErrDisabled)
	assert.Nil(t, a.Session.Current())
}

func TestCreatePostInvalidatesFeedAndPosts(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = a.HomeFeed(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, srv.Hits("GET /api/posts/feed"))

	created, err := a.CreatePost(ctx, Draft{
		Title:   "hello",
		Content: "first post",
		Images: []DraftImage{
			{Filename: "a.png", ContentType: "image/png", Size: 3, Data: bytes.NewReader([]byte{1, 2, 3})},
			{Filename: "b.jpg", ContentType: "image/jpeg", Size: 3, Data: bytes.NewReader([]byte{4, 5, 6})},
		},
	})
	require.NoError(t, err)
	assert.Len(t, created.Images, 2)
	// form plus attachments went up as a single request
	assert.Equal(t, 1, srv.Hits("POST /api/posts"))

	posts, err := a.HomeFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits("GET /api/posts/feed"))
	require.NotEmpty(t, posts)
	assert.Equal(t, "hello", posts[0].Title)
}

func TestCreatePostRejectsOversizedDraft(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = a.CreatePost(ctx, Draft{Title: "", Content: "body"})
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "Title")

	_, err = a.CreatePost(ctx, Draft{
		Title: "t", Content: "c",
		Images: []DraftImage{{Filename: "x.exe", ContentType: "application/octet-stream", Size: 1}},
	})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, 0, srv.Hits("POST /api/posts"))
}

func TestLikeToggleRevertsOnFailure(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	ada := srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	postID := srv.SeedPost(ada, "t", "c")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	agg, err := a.Engagement(ctx, []string{postID})
	require.NoError(t, err)
	btn := a.NewLikeButton(postID, agg[postID])
	require.False(t, btn.State().Liked)

	srv.FailNextMutation("like service down")
	err = btn.Toggle(ctx)
	require.Error(t, err)
	// tentative flip rolled back, counts untouched
	assert.False(t, btn.State().Liked)
	assert.Equal(t, 0, btn.State().LikeCount)

	require.NoError(t, btn.Toggle(ctx))
	assert.True(t, btn.State().Liked)
	assert.Equal(t, 1, btn.State().LikeCount)
}

func TestLikeToggleInvalidatesEngagement(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	ada := srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	postID := srv.SeedPost(ada, "t", "c")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = a.Engagement(ctx, []string{postID})
	require.NoError(t, err)
	require.Equal(t, 1, srv.Hits("POST /api/posts/batch/engagement"))

	btn := a.NewLikeButton(postID, model.Engagement{PostID: postID})
	require.NoError(t, btn.Toggle(ctx))

	agg, err := a.Engagement(ctx, []string{postID})
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits("POST /api/posts/batch/engagement"))
	assert.True(t, agg[postID].Liked)
	assert.Equal(t, 1, agg[postID].LikeCount)
}

func TestFollowToggleRefreshesProfileState(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	bob := srv.SeedUser("bob@example.com", "pw", "Bob", "Babbage")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	stats, err := a.FollowStats(ctx, bob)
	require.NoError(t, err)
	require.False(t, stats.IsFollowing)

	btn := a.NewFollowButton(bob, stats)
	require.NoError(t, btn.Toggle(ctx))
	assert.True(t, btn.State().IsFollowing)
	assert.Equal(t, 1, btn.State().Followers)

	stats, err = a.FollowStats(ctx, bob)
	require.NoError(t, err)
	assert.True(t, stats.IsFollowing)
	assert.Equal(t, 1, stats.Followers)
	assert.Equal(t, 2, srv.Hits("GET /api/users/:id/follow/status"))
}

func TestFollowToggleRevertsOnFailure(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	bob := srv.SeedUser("bob@example.com", "pw", "Bob", "Babbage")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	btn := a.NewFollowButton(bob, model.FollowStats{})
	srv.FailNextMutation("graph write failed")
	require.Error(t, btn.Toggle(ctx))
	assert.False(t, btn.State().IsFollowing)
	assert.Equal(t, 0, btn.State().Followers)
}

func TestSearchGatedUntilTwoCharacters(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = a.SearchUsers(ctx, "a", 1)
	require.ErrorIs(t, err, query.ErrDisabled)
	assert.Equal(t, 0, srv.Hits("GET /api/users/search"))

	page, err := a.SearchUsers(ctx, "ad", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ada", page.Items[0].FirstName)
	assert.Equal(t, 1, srv.Hits("GET /api/users/search"))
}

func TestLogoutInvalidatesViewerScopedReads(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	ada := srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	bob := srv.SeedUser("bob@example.com", "pw", "Bob", "Babbage")
	srv.SeedFollow(ada, bob)
	srv.SeedPost(bob, "from bob", "c")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	posts, err := a.HomeFeed(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	a.Logout()
	_, err = a.Login(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	// the feed cached for ada must not leak into bob's session
	posts, err = a.HomeFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits("GET /api/posts/feed"))
	for _, p := range posts {
		assert.Equal(t, bob, p.UserID)
	}
}

func TestSignupSetsWelcomeFlagOnce(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()

	a := newTestApp(t, srv)
	ctx := context.Background()

	_, err := a.Signup(ctx, validation.SignupForm{
		FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", Password: "C0mp!lers", ConfirmPassword: "C0mp!lers",
	})
	require.NoError(t, err)
	assert.True(t, a.ShowWelcome())
	assert.False(t, a.ShowWelcome())
}

func TestCommentAddRefreshesListAndCounts(t *testing.T) {
	srv := testapi.New()
	defer srv.Close()
	ada := srv.SeedUser("ada@example.com", "pw", "Ada", "Lovelace")
	postID := srv.SeedPost(ada, "t", "c")

	a := newTestApp(t, srv)
	ctx := context.Background()
	_, err := a.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	comments, err := a.Comments(ctx, postID)
	require.NoError(t, err)
	require.Empty(t, comments)

	_, err = a.AddComment(ctx, postID, "nice engine")
	require.NoError(t, err)

	comments, err = a.Comments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice engine", comments[0].Content)
	assert.Equal(t, 2, srv.Hits("GET /api/posts/:id/comments"))
}
