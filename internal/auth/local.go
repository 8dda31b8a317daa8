package auth

import (
	"context"
	"errors"

	"github.com/yourname/bloomhealth/internal"
)

// LocalAuthProvider resolves bearer tokens against a fixed set of users.
type LocalAuthProvider struct {
	users  map[string]internal.User
	logger internal.Logger
}

func (a *LocalAuthProvider) ValidateTokenLocal(token string) (*internal.User, error) {
	if u, ok := a.users[token]; ok && token != "" {
		return &u, nil
	}
	a.logger.Warnf("invalid token (%d chars)", len(token))
	return nil, errors.New("invalid token")
}

func (a *LocalAuthProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	a.logger.Warnf("ValidateTokenRemote not implemented in LocalAuthProvider")
	return nil, errors.New("not implemented in LocalAuthProvider")
}

// NewLocalAuthProvider accepts a single demo user identified by token.
func NewLocalAuthProvider(token string, logger internal.Logger) *LocalAuthProvider {
	return NewLocalAuthProviderWithUsers([]internal.User{
		{ID: "u1", Token: token, Name: "Demo User", Email: "demo@bloom.local"},
	}, logger)
}

func NewLocalAuthProviderWithUsers(users []internal.User, logger internal.Logger) *LocalAuthProvider {
	byToken := make(map[string]internal.User, len(users))
	for _, u := range users {
		byToken[u.Token] = u
	}
	return &LocalAuthProvider{users: byToken, logger: logger}
}
