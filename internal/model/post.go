package model

import "time"

// Post as served by /api/posts. The server owns it; the client only holds
// read-only cached copies.
type Post struct {
	ID        string      `json:"_id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	UserID    string      `json:"user_id"`
	Images    []PostImage `json:"images,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PostImage describes one attachment stored server-side.
type PostImage struct {
	FileID      string `json:"fileId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
