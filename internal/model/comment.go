package model

import "time"

// Comment belongs to exactly one post.
type Comment struct {
	ID        string      `json:"_id"`
	PostID    string      `json:"post_id"`
	Content   string      `json:"content"`
	Author    UserSummary `json:"author"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// UserSummary is the embedded author shape the API attaches to comments
// and search results.
type UserSummary struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarID  string `json:"avatar,omitempty"`
}
