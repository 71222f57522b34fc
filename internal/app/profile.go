package app

import (
	"context"

	"github.com/d60-Lab/social-client/internal/api"
	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
	"github.com/d60-Lab/social-client/internal/validation"
)

// Profile returns a cached profile page payload.
func (a *App) Profile(ctx context.Context, userID string) (model.UserProfile, error) {
	return query.Fetch(ctx, a.Cache, keyProfile(userID), func(ctx context.Context) (model.UserProfile, error) {
		return a.Client.GetUser(ctx, a.Session.Current(), userID)
	}, query.Options{})
}

// FollowStats returns the cached follow aggregates for a profile.
func (a *App) FollowStats(ctx context.Context, userID string) (model.FollowStats, error) {
	return query.Fetch(ctx, a.Cache, keyFollowStat(userID), func(ctx context.Context) (model.FollowStats, error) {
		return a.Client.FollowStatus(ctx, a.Session.Current(), userID)
	}, query.Options{})
}

// Followers returns one page of a profile's followers.
func (a *App) Followers(ctx context.Context, userID string, page int) (model.Page[model.UserSummary], error) {
	return query.Fetch(ctx, a.Cache, keyFollowerPage(userID, page, defaultPageSize), func(ctx context.Context) (model.Page[model.UserSummary], error) {
		return a.Client.Followers(ctx, a.Session.Current(), userID, page, defaultPageSize)
	}, query.Options{})
}

// Following returns one page of the users a profile follows.
func (a *App) Following(ctx context.Context, userID string, page int) (model.Page[model.UserSummary], error) {
	return query.Fetch(ctx, a.Cache, keyFollowingPage(userID, page, defaultPageSize), func(ctx context.Context) (model.Page[model.UserSummary], error) {
		return a.Client.Following(ctx, a.Session.Current(), userID, page, defaultPageSize)
	}, query.Options{})
}

// UpdateProfile edits the viewer's profile and invalidates it.
func (a *App) UpdateProfile(ctx context.Context, firstName, lastName, bio string) (model.UserProfile, error) {
	return query.Mutate(ctx, a.Cache, func(ctx context.Context) (model.UserProfile, error) {
		return a.Client.UpdateProfile(ctx, a.Session.Current(), firstName, lastName, bio)
	}, query.Mutation[model.UserProfile]{
		Invalidates: a.ownProfileKeys(),
	})
}

// UploadAvatar validates the selected file and replaces the avatar.
func (a *App) UploadAvatar(ctx context.Context, img DraftImage) (model.UserProfile, error) {
	if err := validation.Images([]validation.ImageMeta{{
		Filename: img.Filename, ContentType: img.ContentType, Size: img.Size,
	}}); err != nil {
		return model.UserProfile{}, err
	}
	return query.Mutate(ctx, a.Cache, func(ctx context.Context) (model.UserProfile, error) {
		return a.Client.UploadAvatar(ctx, a.Session.Current(), api.Upload{
			Filename: img.Filename, ContentType: img.ContentType, Data: img.Data,
		})
	}, query.Mutation[model.UserProfile]{
		Invalidates: a.ownProfileKeys(),
	})
}

func (a *App) ownProfileKeys() []query.Key {
	if sess := a.Session.Current(); sess != nil {
		return []query.Key{keyProfile(sess.UserID)}
	}
	return nil
}
