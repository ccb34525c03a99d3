package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
)

// AuthStateChange is published once per SetToken, ClearToken and refresh outcome
type AuthStateChange struct {
	IsAuthorized bool
	IsViewOnly   bool
	// Token is nil when the session was de-authorized
	Token *Token
}

// Observer receives auth state changes. Observers may be called from any goroutine.
type Observer func(AuthStateChange)

// Refresher produces a new token from durable state
type Refresher interface {
	Refresh(ctx context.Context) (*Token, error)
}

// Session owns the current token and refreshes it on demand
type Session struct {
	mu    sync.Mutex
	token *Token

	refresher Refresher
	store     TokenStore
	flight    singleflight.Group
	now       func() time.Time

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// NewSession creates a session backed by manager and its store
func NewSession(manager *Manager) *Session {
	return NewSessionWith(manager, manager.Store())
}

// NewSessionWith creates a session from an explicit refresher and store
func NewSessionWith(refresher Refresher, store TokenStore) *Session {
	return &Session{
		refresher: refresher,
		store:     store,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
}

// Load restores the token from the store when a durable grant exists.
// The restored token may be stale, GetToken refreshes it.
func (s *Session) Load() error {
	if !HasGrant(s.store) {
		return nil
	}

	token, err := LoadToken(s.store)
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}

	s.SetToken(token)
	return nil
}

// Reload brings the session in line with a store another process changed.
// A removed grant de-authorizes the session, an unchanged token is ignored.
func (s *Session) Reload() error {
	if !HasGrant(s.store) {
		s.mu.Lock()
		hadToken := s.token != nil
		s.token = nil
		s.mu.Unlock()

		if hadToken {
			s.notify(AuthStateChange{})
		}
		return nil
	}

	token, err := LoadToken(s.store)
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}
	if current := s.Current(); current != nil &&
		current.AccessToken == token.AccessToken &&
		current.IsViewOnly == token.IsViewOnly {
		return nil
	}

	s.SetToken(token)
	return nil
}

// IsAuthorizationAvailable reports whether a durable grant exists to refresh from
func (s *Session) IsAuthorizationAvailable() bool {
	return HasGrant(s.store)
}

// Current returns the cached token without refreshing it
func (s *Session) Current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// GetToken returns the cached token while it is fresh. Otherwise it refreshes,
// with concurrent callers sharing a single refresh. When the refresh fails the
// session and its store are cleared and ErrSessionExpired is returned.
//
// The shared refresh ignores cancellation of any one caller. Each caller stops
// waiting when its own ctx is done.
func (s *Session) GetToken(ctx context.Context) (*Token, error) {
	if token := s.Current(); !IsExpired(token, s.now()) {
		return token, nil
	}

	refreshCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("refresh", func() (interface{}, error) {
		// A flight that finished just before this one may already have refreshed
		if token := s.Current(); !IsExpired(token, s.now()) {
			return token, nil
		}

		token, err := s.refresher.Refresh(refreshCtx)
		if err != nil {
			if !isContextError(err) {
				s.expire()
			}
			return nil, err
		}

		s.SetToken(token)
		return token, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if isContextError(res.Err) {
				return nil, res.Err
			}
			return nil, apperrors.New(apperrors.ErrSessionExpired, "get token", res.Err)
		}
		if res.Shared {
			logger.Debug("Joined in-flight token refresh")
		}
		return res.Val.(*Token), nil
	}
}

// SetToken replaces the current token and notifies observers
func (s *Session) SetToken(token *Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.notify(stateFor(token))
}

// ClearToken forgets the current token, wipes the store and notifies observers
func (s *Session) ClearToken() error {
	s.mu.Lock()
	s.token = nil
	err := s.store.Clear()
	s.mu.Unlock()

	s.notify(AuthStateChange{})
	return err
}

// expire forgets the token and wipes the store after a failed refresh
func (s *Session) expire() {
	s.mu.Lock()
	s.token = nil
	err := s.store.Clear()
	s.mu.Unlock()

	if err != nil {
		logger.Warn("failed to clear token store: %v", err)
	}
	logger.Warn("Session expired, sign in again")
	s.notify(AuthStateChange{})
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Subscribe registers obs and returns a function that removes it
func (s *Session) Subscribe(obs Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = obs

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) notify(change AuthStateChange) {
	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.obsMu.Unlock()

	for _, obs := range observers {
		obs(change)
	}
}

func stateFor(token *Token) AuthStateChange {
	if token == nil {
		return AuthStateChange{}
	}
	return AuthStateChange{
		IsAuthorized: true,
		IsViewOnly:   token.IsViewOnly,
		Token:        token,
	}
}
