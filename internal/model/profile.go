package model

import "time"

// UserProfile is the full profile page payload.
type UserProfile struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarID  string    `json:"avatar,omitempty"`
	JoinedAt  time.Time `json:"createdAt"`
}

// FollowStats are the derived follow aggregates cached per profile,
// not per edge.
type FollowStats struct {
	Followers   int  `json:"followers"`
	Following   int  `json:"following"`
	IsFollowing bool `json:"is_following"`
}
