package api

import (
	"context"
	"net/url"
	"sort"

	"github.com/d60-Lab/social-client/internal/model"
)

// ListComments fetches every comment on a post, oldest first.
func (c *Client) ListComments(ctx context.Context, sess *model.Session, postID string) ([]model.Comment, error) {
	var out []model.Comment
	err := c.get(ctx, sess, "/api/posts/"+url.PathEscape(postID)+"/comments", &out)
	return out, err
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, sess *model.Session, postID, content string) (model.Comment, error) {
	var out model.Comment
	err := c.postJSON(ctx, sess, "/api/posts/"+url.PathEscape(postID)+"/comments", createCommentRequest{Content: content}, &out)
	return out, err
}

// DeleteComment removes one comment by id.
func (c *Client) DeleteComment(ctx context.Context, sess *model.Session, commentID string) error {
	return c.delete(ctx, sess, "/api/posts/comments/"+url.PathEscape(commentID), nil)
}

// ToggleLike flips the viewer's like on a post and returns the new
// server-side engagement aggregate.
func (c *Client) ToggleLike(ctx context.Context, sess *model.Session, postID string) (model.Engagement, error) {
	var out model.Engagement
	err := c.postJSON(ctx, sess, "/api/posts/"+url.PathEscape(postID)+"/like", nil, &out)
	return out, err
}

type batchEngagementRequest struct {
	PostIDs []string `json:"post_ids"`
}

// BatchEngagement fetches engagement aggregates for a set of posts in one
// call. IDs are sorted before sending so equal sets produce equal requests
// (and equal cache keys upstream).
func (c *Client) BatchEngagement(ctx context.Context, sess *model.Session, postIDs []string) (map[string]model.Engagement, error) {
	ids := append([]string(nil), postIDs...)
	sort.Strings(ids)

	var rows []model.Engagement
	if err := c.postJSON(ctx, sess, "/api/posts/batch/engagement", batchEngagementRequest{PostIDs: ids}, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]model.Engagement, len(rows))
	for _, e := range rows {
		out[e.PostID] = e
	}
	return out, nil
}
