package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/d60-Lab/social-client/internal/model"
)

// GetUser fetches a profile by id.
func (c *Client) GetUser(ctx context.Context, sess *model.Session, userID string) (model.UserProfile, error) {
	var out model.UserProfile
	err := c.get(ctx, sess, "/api/users/"+url.PathEscape(userID), &out)
	return out, err
}

type updateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// UpdateProfile edits the viewer's own profile fields.
func (c *Client) UpdateProfile(ctx context.Context, sess *model.Session, firstName, lastName, bio string) (model.UserProfile, error) {
	var out model.UserProfile
	req := updateProfileRequest{FirstName: firstName, LastName: lastName, Bio: bio}
	err := c.patchJSON(ctx, sess, "/api/users/profile", req, &out)
	return out, err
}

// UploadAvatar replaces the viewer's avatar with one multipart upload.
func (c *Client) UploadAvatar(ctx context.Context, sess *model.Session, avatar Upload) (model.UserProfile, error) {
	body, contentType, err := encodeMultipart(nil, "avatar", []Upload{avatar})
	if err != nil {
		return model.UserProfile{}, err
	}
	var out model.UserProfile
	err = c.do(ctx, sess, "POST", "/api/users/avatar", body, contentType, &out)
	return out, err
}

// SearchUsers fetches one page of profile matches for a query string.
func (c *Client) SearchUsers(ctx context.Context, sess *model.Session, query string, page, limit int) (model.Page[model.UserSummary], error) {
	var out model.Page[model.UserSummary]
	path := fmt.Sprintf("/api/users/search?q=%s&%s", url.QueryEscape(query), pageQuery(page, limit))
	err := c.get(ctx, sess, path, &out)
	return out, err
}

// SuggestedUsers fetches the people-you-may-know list.
func (c *Client) SuggestedUsers(ctx context.Context, sess *model.Session) ([]model.UserSummary, error) {
	var out []model.UserSummary
	err := c.get(ctx, sess, "/api/users/suggested", &out)
	return out, err
}

// Follow creates a follow edge from the viewer to userID.
func (c *Client) Follow(ctx context.Context, sess *model.Session, userID string) error {
	return c.postJSON(ctx, sess, "/api/users/"+url.PathEscape(userID)+"/follow", nil, nil)
}

// Unfollow removes the viewer's follow edge to userID.
func (c *Client) Unfollow(ctx context.Context, sess *model.Session, userID string) error {
	return c.delete(ctx, sess, "/api/users/"+url.PathEscape(userID)+"/follow", nil)
}

// FollowStatus fetches the derived follow aggregates for a profile.
func (c *Client) FollowStatus(ctx context.Context, sess *model.Session, userID string) (model.FollowStats, error) {
	var out model.FollowStats
	err := c.get(ctx, sess, "/api/users/"+url.PathEscape(userID)+"/follow/status", &out)
	return out, err
}

// Followers fetches one page of a user's followers.
func (c *Client) Followers(ctx context.Context, sess *model.Session, userID string, page, limit int) (model.Page[model.UserSummary], error) {
	var out model.Page[model.UserSummary]
	path := fmt.Sprintf("/api/users/%s/followers?%s", url.PathEscape(userID), pageQuery(page, limit))
	err := c.get(ctx, sess, path, &out)
	return out, err
}

// Following fetches one page of the users someone follows.
func (c *Client) Following(ctx context.Context, sess *model.Session, userID string, page, limit int) (model.Page[model.UserSummary], error) {
	var out model.Page[model.UserSummary]
	path := fmt.Sprintf("/api/users/%s/following?%s", url.PathEscape(userID), pageQuery(page, limit))
	err := c.get(ctx, sess, path, &out)
	return out, err
}
