package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/d60-Lab/social-client/internal/model"
)

// ListPosts fetches one page of the global post list, newest first.
func (c *Client) ListPosts(ctx context.Context, sess *model.Session, page, limit int) (model.Page[model.Post], error) {
	var out model.Page[model.Post]
	err := c.get(ctx, sess, "/api/posts?"+pageQuery(page, limit), &out)
	return out, err
}

// Feed fetches one page of the posts from users the viewer follows.
func (c *Client) Feed(ctx context.Context, sess *model.Session, page, limit int) (model.Page[model.Post], error) {
	var out model.Page[model.Post]
	err := c.get(ctx, sess, "/api/posts/feed?"+pageQuery(page, limit), &out)
	return out, err
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, sess *model.Session, postID string) (model.Post, error) {
	var out model.Post
	err := c.get(ctx, sess, "/api/posts/"+url.PathEscape(postID), &out)
	return out, err
}

// UserPosts fetches one page of a user's own posts.
func (c *Client) UserPosts(ctx context.Context, sess *model.Session, userID string, page, limit int) (model.Page[model.Post], error) {
	var out model.Page[model.Post]
	path := fmt.Sprintf("/api/posts/user/%s?%s", url.PathEscape(userID), pageQuery(page, limit))
	err := c.get(ctx, sess, path, &out)
	return out, err
}

// CreatePost uploads a post with optional image attachments as one
// multipart request.
func (c *Client) CreatePost(ctx context.Context, sess *model.Session, title, content string, images []Upload) (model.Post, error) {
	body, contentType, err := encodeMultipart(map[string]string{
		"title":   title,
		"content": content,
	}, "images", images)
	if err != nil {
		return model.Post{}, err
	}
	var out model.Post
	err = c.do(ctx, sess, "POST", "/api/posts", body, contentType, &out)
	return out, err
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePost edits a post's title and content.
func (c *Client) UpdatePost(ctx context.Context, sess *model.Session, postID, title, content string) (model.Post, error) {
	var out model.Post
	err := c.patchJSON(ctx, sess, "/api/posts/"+url.PathEscape(postID), updatePostRequest{Title: title, Content: content}, &out)
	return out, err
}

// DeletePost removes a post and its attachments.
func (c *Client) DeletePost(ctx context.Context, sess *model.Session, postID string) error {
	return c.delete(ctx, sess, "/api/posts/"+url.PathEscape(postID), nil)
}

// ImageURL returns the address a post image is served from. Rendering
// layers use it directly; no request is made here.
func (c *Client) ImageURL(filename string) string {
	return c.baseURL + "/api/posts/image/" + url.PathEscape(filename)
}
