package model

// Engagement is the per-post aggregate the UI renders next to a post:
// like/comment counts plus whether the current viewer liked it. Derived
// server-side, fetched in batches by post id, never stored on the Post.
type Engagement struct {
	PostID       string `json:"post_id"`
	Liked        bool   `json:"liked"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}
