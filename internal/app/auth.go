package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/validation"
	"github.com/d60-Lab/social-client/pkg/logger"
)

// Login validates the form, exchanges credentials and activates the
// session. Session-gated queries become eligible to fetch from here on.
func (a *App) Login(ctx context.Context, email, password string) (model.Session, error) {
	if err := validation.Struct(validation.LoginForm{Email: email, Password: password}); err != nil {
		return model.Session{}, err
	}
	sess, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	if err := a.Session.Login(sess); err != nil {
		return model.Session{}, err
	}
	logger.Info("logged in", zap.String("user", sess.UserID))
	return sess, nil
}

// Signup validates the form, creates the account, activates the session
// and records the one-shot welcome flag.
func (a *App) Signup(ctx context.Context, form validation.SignupForm) (model.Session, error) {
	if err := validation.Struct(form); err != nil {
		return model.Session{}, err
	}
	sess, err := a.Client.Signup(ctx, form.FirstName, form.LastName, form.Email, form.Password)
	if err != nil {
		return model.Session{}, err
	}
	if err := a.Session.Login(sess); err != nil {
		return model.Session{}, err
	}
	a.Session.MarkNewUser()
	logger.Info("account created", zap.String("user", sess.UserID))
	return sess, nil
}

// Logout clears the session; gated queries stop fetching immediately.
func (a *App) Logout() {
	a.Session.Logout()
	logger.Info("logged out")
}

// ShowWelcome reports (and consumes) whether this session just signed up.
func (a *App) ShowWelcome() bool {
	return a.Session.ConsumeNewUser()
}
