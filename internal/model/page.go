package model

// Pagination is the cursor metadata every list endpoint returns.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HasNext reports whether another page follows this one.
func (p Pagination) HasNext() bool { return p.Page < p.Pages }

// Page is one fetched page of a paginated endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
