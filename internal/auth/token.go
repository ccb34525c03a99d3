package auth

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// TokenTypeBearer is the only token type issued by the provider
	TokenTypeBearer = "Bearer"
	// ExpiryMargin is subtracted from expires_in so a token is refreshed before the server rejects it
	ExpiryMargin = 120 * time.Second
)

// Token is one OAuth2 credential grant. Replace it as a whole, never field by field.
type Token struct {
	// State correlates the token with the sign-in that produced it
	State        string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresOn    time.Time `json:"-"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IsViewOnly   bool      `json:"-"`
}

// NewToken creates an empty token with a fresh correlation state
func NewToken() *Token {
	return &Token{
		State:     uuid.NewString(),
		TokenType: TokenTypeBearer,
	}
}

// ParseToken decodes a token endpoint response and stamps its expiry relative to now.
// expires_on is always recomputed, it is never read from the payload.
func ParseToken(data []byte, now time.Time) (*Token, error) {
	token := NewToken()
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}
	token.TokenType = TokenTypeBearer
	token.SetExpiry(now)
	return token, nil
}

// SetExpiry sets ExpiresOn to now + ExpiresIn - ExpiryMargin
func (t *Token) SetExpiry(now time.Time) {
	t.ExpiresOn = now.Add(time.Duration(t.ExpiresIn)*time.Second - ExpiryMargin)
}

// IsExpired reports whether t is unusable at now. The expires_in and
// expires_on checks are independent: either one marks the token expired.
func IsExpired(t *Token, now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.ExpiresIn <= 0 {
		return true
	}
	return !t.ExpiresOn.After(now)
}

// OAuth2 converts the token for use with golang.org/x/oauth2 clients
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresOn,
		ExpiresIn:    t.ExpiresIn,
	}
}
