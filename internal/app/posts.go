package app

import (
	"context"
	"io"

	"github.com/d60-Lab/social-client/internal/api"
	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
	"github.com/d60-Lab/social-client/internal/validation"
)

// postMutationKeys is the invalidation set for any post write: the global
// list (paged and infinite) and the feed.
var postMutationKeys = []query.Key{keyPostsRoot, keyPostsInf, keyFeedInf}

// Draft is a post form submission, images included.
type Draft struct {
	Title   string
	Content string
	Images  []DraftImage
}

// DraftImage is one file the user attached.
type DraftImage struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

func (d Draft) imageMeta() []validation.ImageMeta {
	out := make([]validation.ImageMeta, len(d.Images))
	for i, img := range d.Images {
		out[i] = validation.ImageMeta{Filename: img.Filename, ContentType: img.ContentType, Size: img.Size}
	}
	return out
}

func (d Draft) uploads() []api.Upload {
	out := make([]api.Upload, len(d.Images))
	for i, img := range d.Images {
		out[i] = api.Upload{Filename: img.Filename, ContentType: img.ContentType, Data: img.Data}
	}
	return out
}

// CreatePost validates the draft and submits it as one multipart request.
// On success the post lists and the feed refetch on their next read.
func (a *App) CreatePost(ctx context.Context, draft Draft) (model.Post, error) {
	if err := validation.Struct(validation.PostForm{Title: draft.Title, Content: draft.Content}); err != nil {
		return model.Post{}, err
	}
	if err := validation.Images(draft.imageMeta()); err != nil {
		return model.Post{}, err
	}
	return query.Mutate(ctx, a.Cache, func(ctx context.Context) (model.Post, error) {
		return a.Client.CreatePost(ctx, a.Session.Current(), draft.Title, draft.Content, draft.uploads())
	}, query.Mutation[model.Post]{Invalidates: postMutationKeys})
}

// UpdatePost edits a post's text fields.
func (a *App) UpdatePost(ctx context.Context, postID, title, content string) (model.Post, error) {
	if err := validation.Struct(validation.PostForm{Title: title, Content: content}); err != nil {
		return model.Post{}, err
	}
	return query.Mutate(ctx, a.Cache, func(ctx context.Context) (model.Post, error) {
		return a.Client.UpdatePost(ctx, a.Session.Current(), postID, title, content)
	}, query.Mutation[model.Post]{
		Invalidates: append([]query.Key{keyPost(postID)}, postMutationKeys...),
	})
}

// DeletePost removes a post after the view's confirmation flow.
func (a *App) DeletePost(ctx context.Context, postID string) error {
	_, err := query.Mutate(ctx, a.Cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Client.DeletePost(ctx, a.Session.Current(), postID)
	}, query.Mutation[struct{}]{
		Invalidates: append([]query.Key{keyPost(postID)}, postMutationKeys...),
	})
	return err
}

// Comments returns the cached comment list for a post.
func (a *App) Comments(ctx context.Context, postID string) ([]model.Comment, error) {
	return query.Fetch(ctx, a.Cache, keyComments(postID), func(ctx context.Context) ([]model.Comment, error) {
		return a.Client.ListComments(ctx, a.Session.Current(), postID)
	}, query.Options{})
}

// AddComment posts a comment and invalidates the post's comment list plus
// the engagement aggregates that carry its comment count.
func (a *App) AddComment(ctx context.Context, postID, content string) (model.Comment, error) {
	return query.Mutate(ctx, a.Cache, func(ctx context.Context) (model.Comment, error) {
		return a.Client.CreateComment(ctx, a.Session.Current(), postID, content)
	}, query.Mutation[model.Comment]{
		Invalidates: []query.Key{keyComments(postID), keyEngagement},
	})
}

// RemoveComment deletes one comment.
func (a *App) RemoveComment(ctx context.Context, postID, commentID string) error {
	_, err := query.Mutate(ctx, a.Cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Client.DeleteComment(ctx, a.Session.Current(), commentID)
	}, query.Mutation[struct{}]{
		Invalidates: []query.Key{keyComments(postID), keyEngagement},
	})
	return err
}
