package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshToken(now time.Time) *Token {
	token := NewToken()
	token.AccessToken = "ya29.access"
	token.ExpiresIn = 3600
	token.RefreshToken = "1/refresh"
	token.SetExpiry(now)
	return token
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{name: "nil token", token: nil, want: true},
		{name: "fresh token", token: freshToken(now), want: false},
		{
			name: "missing access token",
			token: func() *Token {
				tok := freshToken(now)
				tok.AccessToken = ""
				return tok
			}(),
			want: true,
		},
		{
			name: "zero expires_in with future expires_on",
			token: func() *Token {
				tok := freshToken(now)
				tok.ExpiresIn = 0
				return tok
			}(),
			want: true,
		},
		{
			name: "negative expires_in",
			token: func() *Token {
				tok := freshToken(now)
				tok.ExpiresIn = -5
				return tok
			}(),
			want: true,
		},
		{
			name: "expires_on equal to now",
			token: func() *Token {
				tok := freshToken(now)
				tok.ExpiresOn = now
				return tok
			}(),
			want: true,
		},
		{
			name: "expires_on in the past",
			token: func() *Token {
				tok := freshToken(now)
				tok.ExpiresOn = now.Add(-time.Second)
				return tok
			}(),
			want: true,
		},
		{
			name: "expires_in shorter than margin",
			token: func() *Token {
				tok := freshToken(now)
				tok.ExpiresIn = 100
				tok.SetExpiry(now)
				return tok
			}(),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.token, now))
		})
	}
}

func TestIsExpired_Property(t *testing.T) {
	now := time.Now()
	offsets := []time.Duration{-time.Hour, -time.Second, 0, time.Second, time.Hour}

	for _, access := range []string{"", "tok"} {
		for _, expiresIn := range []int64{-1, 0, 1, 3600} {
			for _, offset := range offsets {
				token := &Token{AccessToken: access, ExpiresIn: expiresIn, ExpiresOn: now.Add(offset)}

				fresh := access != "" && expiresIn > 0 && token.ExpiresOn.After(now)
				assert.Equal(t, !fresh, IsExpired(token, now), "access=%q expires_in=%d offset=%v", access, expiresIn, offset)
			}
		}
	}
}

func TestToken_SetExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token := &Token{ExpiresIn: 3600}

	token.SetExpiry(now)

	assert.Equal(t, now.Add(3600*time.Second-120*time.Second), token.ExpiresOn)
}

func TestParseToken(t *testing.T) {
	t.Run("decodes provider payload", func(t *testing.T) {
		now := time.Now()
		token, err := ParseToken([]byte(`{"access_token":"a","expires_in":3600,"token_type":"Bearer","refresh_token":"r"}`), now)

		require.NoError(t, err)
		assert.Equal(t, "a", token.AccessToken)
		assert.Equal(t, int64(3600), token.ExpiresIn)
		assert.Equal(t, "r", token.RefreshToken)
		assert.Equal(t, TokenTypeBearer, token.TokenType)
		assert.NotEmpty(t, token.State)
		assert.Equal(t, now.Add(3480*time.Second), token.ExpiresOn)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := ParseToken([]byte(`not json`), time.Now())
		assert.Error(t, err)
	})
}

func TestToken_JSONRoundTrip(t *testing.T) {
	issued := time.Now().Add(-30 * time.Minute)
	original := freshToken(issued)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	now := time.Now()
	decoded, err := ParseToken(data, now)
	require.NoError(t, err)

	assert.Equal(t, original.AccessToken, decoded.AccessToken)
	assert.Equal(t, original.TokenType, decoded.TokenType)
	assert.Equal(t, original.RefreshToken, decoded.RefreshToken)
	// expires_on is recomputed from the decode time
	assert.NotEqual(t, original.ExpiresOn, decoded.ExpiresOn)
	assert.Equal(t, now.Add(time.Duration(original.ExpiresIn)*time.Second-ExpiryMargin), decoded.ExpiresOn)
}

func TestToken_OAuth2(t *testing.T) {
	token := freshToken(time.Now())

	o := token.OAuth2()
	assert.Equal(t, token.AccessToken, o.AccessToken)
	assert.Equal(t, token.RefreshToken, o.RefreshToken)
	assert.Equal(t, token.ExpiresOn, o.Expiry)
}

func TestNewToken_UniqueState(t *testing.T) {
	assert.NotEqual(t, NewToken().State, NewToken().State)
}
