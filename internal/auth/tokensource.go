package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// sessionTokenSource adapts a Session to oauth2.TokenSource
type sessionTokenSource struct {
	ctx     context.Context
	session *Session
}

// TokenSource returns an oauth2.TokenSource backed by the session. Each call
// to Token goes through GetToken, so an expired token is refreshed first.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, session: s}
}

// Token implements oauth2.TokenSource
func (t *sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := t.session.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}
	return token.OAuth2(), nil
}
