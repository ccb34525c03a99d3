package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/mapsengine/gme-cli/internal/config"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/utils"
)

const (
	// RedirectURIOutOfBand tells the provider to show the code to the user instead of redirecting
	RedirectURIOutOfBand = "urn:ietf:wg:oauth:2.0:oob"

	grantTypeAuthorizationCode = "authorization_code"
	grantTypeRefreshToken      = "refresh_token"

	resultSuccess = "Success"
	resultDenied  = "Denied"
	codeMarker    = "code="
)

// Manager obtains and refreshes tokens for the installed-application OAuth flow
type Manager struct {
	oauth      oauth2.Config
	editScopes []string
	viewScopes []string
	store      TokenStore
	httpClient *http.Client
	now        func() time.Time

	// ViewOnly requests read-only scopes and marks exchanged tokens as view-only
	ViewOnly bool
}

// NewManager creates a lifecycle manager. client may be nil.
func NewManager(cfg *config.UserConfig, store TokenStore, client *http.Client) *Manager {
	if client == nil {
		client = utils.NewHTTPClient()
	}
	return &Manager{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: RedirectURIOutOfBand,
		},
		editScopes: cfg.EditScopes,
		viewScopes: cfg.ViewScopes,
		store:      store,
		httpClient: client,
		now:        time.Now,
	}
}

// Store returns the durable token store
func (m *Manager) Store() TokenStore {
	return m.store
}

// AuthorizationURL builds the consent URL for the edit or view scopes
func (m *Manager) AuthorizationURL() string {
	if m.ViewOnly {
		return m.BuildAuthorizationURL(m.viewScopes)
	}
	return m.BuildAuthorizationURL(m.editScopes)
}

// BuildAuthorizationURL builds the provider's consent URL for scopes
func (m *Manager) BuildAuthorizationURL(scopes []string) string {
	cfg := m.oauth
	cfg.Scopes = scopes
	return cfg.AuthCodeURL("", oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// DecodeAuthorizationResult interprets the result text the provider shows after consent.
// "Success ... code=XYZ" exchanges XYZ for a token, "Denied" returns nil, nil.
// Everything after "code=" is taken as the code, including any trailing text.
func (m *Manager) DecodeAuthorizationResult(ctx context.Context, resultText string) (*Token, error) {
	const op = "decode authorization result"

	switch {
	case resultText == "":
		return nil, apperrors.New(apperrors.ErrAuthProtocol, op, fmt.Errorf("empty result"))
	case strings.HasPrefix(resultText, resultDenied):
		logger.Info("Authorization denied by user")
		return nil, nil
	case strings.HasPrefix(resultText, resultSuccess):
		idx := strings.Index(resultText, codeMarker)
		if idx < 0 {
			return nil, apperrors.New(apperrors.ErrAuthProtocol, op, fmt.Errorf("no authorization code in %q", resultText))
		}
		code := resultText[idx+len(codeMarker):]

		if err := SaveGrant(m.store, code); err != nil {
			return nil, apperrors.New(apperrors.ErrAuthProtocol, op, err)
		}
		return m.ExchangeCodeForToken(ctx, code)
	default:
		return nil, apperrors.New(apperrors.ErrAuthProtocol, op, fmt.Errorf("unrecognized result %q", resultText))
	}
}

// ExchangeCodeForToken trades an authorization code for a token and persists it
func (m *Manager) ExchangeCodeForToken(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("grant_type", grantTypeAuthorizationCode)

	token, status, err := m.exchange(ctx, form)
	if err != nil {
		return nil, apperrors.NewWithStatus(apperrors.ErrTokenExchange, "exchange authorization code", status, err)
	}
	token.IsViewOnly = m.ViewOnly

	// A grant supplied directly (not via the result text) is recorded too
	if err := SaveTokenWithGrant(m.store, token, code); err != nil {
		return nil, apperrors.New(apperrors.ErrTokenExchange, "exchange authorization code", err)
	}

	logger.Info("Authorization code exchanged, token expires %s", token.ExpiresOn.Format(time.RFC3339))
	return token, nil
}

// ExchangeRefreshForToken trades a refresh token for a new access token and persists it.
// The provider does not rotate refresh tokens, so refreshCode is kept on the result.
func (m *Manager) ExchangeRefreshForToken(ctx context.Context, refreshCode string) (*Token, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshCode)
	form.Set("grant_type", grantTypeRefreshToken)

	token, status, err := m.exchange(ctx, form)
	if err != nil {
		return nil, apperrors.NewWithStatus(apperrors.ErrRefreshExchange, "exchange refresh token", status, err)
	}
	token.RefreshToken = refreshCode

	if viewOnly, err := m.store.Get(KeyIsViewOnly); err == nil {
		token.IsViewOnly = viewOnly == "true"
	}

	if err := SaveToken(m.store, token); err != nil {
		return nil, apperrors.New(apperrors.ErrRefreshExchange, "exchange refresh token", err)
	}

	logger.Debug("Access token refreshed, expires %s", token.ExpiresOn.Format(time.RFC3339))
	return token, nil
}

// Refresh obtains a new token from the stored refresh token. Without a stored
// grant all token state is cleared and ErrNoToken is returned.
func (m *Manager) Refresh(ctx context.Context) (*Token, error) {
	const op = "refresh token"

	refreshToken, err := m.store.Get(KeyRefreshToken)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrRefreshExchange, op, err)
	}

	if !HasGrant(m.store) || refreshToken == "" {
		if err := m.store.Clear(); err != nil {
			logger.Warn("failed to clear token store: %v", err)
		}
		return nil, apperrors.New(apperrors.ErrNoToken, op, nil)
	}

	return m.ExchangeRefreshForToken(ctx, refreshToken)
}

// IsExpired reports whether token needs a refresh
func (m *Manager) IsExpired(token *Token) bool {
	return IsExpired(token, m.now())
}

// exchange posts form to the token endpoint. status is 0 when no response was received.
func (m *Manager) exchange(ctx context.Context, form url.Values) (*Token, int, error) {
	form.Set("client_id", m.oauth.ClientID)
	form.Set("client_secret", m.oauth.ClientSecret)
	form.Set("redirect_uri", m.oauth.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer utils.DrainAndClose(resp.Body)

	body, err := utils.ReadResponseBody(resp, 1<<20)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, retrieveError(resp, body)
	}

	token, err := ParseToken(body, m.now())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse token response: %w", err)
	}
	return token, resp.StatusCode, nil
}

// retrieveError describes a token endpoint failure the way golang.org/x/oauth2 does
func retrieveError(resp *http.Response, body []byte) error {
	rerr := &oauth2.RetrieveError{Response: resp, Body: bytes.Clone(body)}

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorURI         string `json:"error_uri"`
	}
	if json.Unmarshal(body, &payload) == nil {
		rerr.ErrorCode = payload.Error
		rerr.ErrorDescription = payload.ErrorDescription
		rerr.ErrorURI = payload.ErrorURI
	}
	return rerr
}
