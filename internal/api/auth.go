package api

import (
	"context"

	"github.com/d60-Lab/social-client/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authPayload struct {
	User  model.UserProfile `json:"user"`
	Token string            `json:"token"`
}

// Login exchanges credentials for an identity and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	var data authPayload
	if err := c.postJSON(ctx, nil, "/api/user/login", loginRequest{Email: email, Password: password}, &data); err != nil {
		return model.Session{}, err
	}
	return sessionFrom(data), nil
}

// Signup creates an account and logs it in.
func (c *Client) Signup(ctx context.Context, firstName, lastName, email, password string) (model.Session, error) {
	var data authPayload
	req := signupRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password}
	if err := c.postJSON(ctx, nil, "/api/user/signup", req, &data); err != nil {
		return model.Session{}, err
	}
	return sessionFrom(data), nil
}

func sessionFrom(data authPayload) model.Session {
	name := data.User.FirstName
	if name == "" {
		name = data.User.Email
	}
	return model.Session{
		UserID:    data.User.ID,
		Email:     data.User.Email,
		Name:      name,
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		Token:     data.Token,
	}
}
