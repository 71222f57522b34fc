package model

// Session is the current authenticated identity plus its bearer token.
// Exactly one session is active per running client.
type Session struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Token     string `json:"token"`
}
