package app

import (
	"context"
	"strings"

	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/query"
)

// minSearchLen gates search so single keystrokes never hit the API.
const minSearchLen = 2

// SearchUsers fetches one page of profile matches. Queries shorter than two
// characters return query.ErrDisabled without a network call.
func (a *App) SearchUsers(ctx context.Context, q string, page int) (model.Page[model.UserSummary], error) {
	q = strings.TrimSpace(q)
	return query.Fetch(ctx, a.Cache, keySearch(q, page, defaultPageSize), func(ctx context.Context) (model.Page[model.UserSummary], error) {
		return a.Client.SearchUsers(ctx, a.Session.Current(), q, page, defaultPageSize)
	}, query.Options{
		Enabled: func() bool { return len(q) >= minSearchLen },
	})
}

// SuggestedUsers returns the people-you-may-know list for the viewer.
func (a *App) SuggestedUsers(ctx context.Context) ([]model.UserSummary, error) {
	return query.Fetch(ctx, a.Cache, keySuggested, func(ctx context.Context) ([]model.UserSummary, error) {
		return a.Client.SuggestedUsers(ctx, a.Session.Current())
	}, a.authed())
}
