package app

import (
	"context"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
)

// HomeFeed returns the cached feed page sequence, fetching page 1 when
// empty. Disabled until a session is active.
func (a *App) HomeFeed(ctx context.Context) ([]model.Post, error) {
	pages, err := query.FetchInfinite(ctx, a.Cache, keyFeedInf, a.feedPage, a.authed())
	if err != nil {
		return nil, err
	}
	return query.Items(pages), nil
}

// MoreFeed appends the next feed page; a no-op at the end of the feed or
// while a page fetch is already running.
func (a *App) MoreFeed(ctx context.Context) (posts []model.Post, fetched bool, err error) {
	pages, fetched, err := query.FetchNextPage(ctx, a.Cache, keyFeedInf, a.feedPage)
	if err != nil {
		return nil, false, err
	}
	return query.Items(pages), fetched, nil
}

func (a *App) feedPage(ctx context.Context, page int) (model.Page[model.Post], error) {
	return a.Client.Feed(ctx, a.Session.Current(), page, defaultPageSize)
}

// AllPosts returns the cached global post list page sequence.
func (a *App) AllPosts(ctx context.Context) ([]model.Post, error) {
	pages, err := query.FetchInfinite(ctx, a.Cache, keyPostsInf, a.postsPage, query.Options{})
	if err != nil {
		return nil, err
	}
	return query.Items(pages), nil
}

// MorePosts appends the next page of the global post list.
func (a *App) MorePosts(ctx context.Context) (posts []model.Post, fetched bool, err error) {
	pages, fetched, err := query.FetchNextPage(ctx, a.Cache, keyPostsInf, a.postsPage)
	if err != nil {
		return nil, false, err
	}
	return query.Items(pages), fetched, nil
}

func (a *App) postsPage(ctx context.Context, page int) (model.Page[model.Post], error) {
	return a.Client.ListPosts(ctx, a.Session.Current(), page, defaultPageSize)
}

// PostsPage fetches one page of the global list for non-scrolling views.
func (a *App) PostsPage(ctx context.Context, page, limit int) (model.Page[model.Post], error) {
	return query.Fetch(ctx, a.Cache, keyPosts(page, limit), func(ctx context.Context) (model.Page[model.Post], error) {
		return a.Client.ListPosts(ctx, a.Session.Current(), page, limit)
	}, query.Options{})
}

// UserPosts returns the first page of a user's posts.
func (a *App) UserPosts(ctx context.Context, userID string) (model.Page[model.Post], error) {
	return query.Fetch(ctx, a.Cache, keyUserPosts(userID), func(ctx context.Context) (model.Page[model.Post], error) {
		return a.Client.UserPosts(ctx, a.Session.Current(), userID, 1, defaultPageSize)
	}, query.Options{})
}

// Post returns one post by id.
func (a *App) Post(ctx context.Context, postID string) (model.Post, error) {
	return query.Fetch(ctx, a.Cache, keyPost(postID), func(ctx context.Context) (model.Post, error) {
		return a.Client.GetPost(ctx, a.Session.Current(), postID)
	}, query.Options{})
}
